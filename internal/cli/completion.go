package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spriteslicer/pkg/pixel"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for spriteslicer.

Completions know which files each command takes: the image argument of
auto, grid and export only offers supported image types (png, jpg, bmp,
gif, tif, webp), while --slices and -o offer .json slice files and
--dir offers directories.

Bash:
  $ source <(spriteslicer completion bash)
  $ spriteslicer completion bash > /etc/bash_completion.d/spriteslicer

Zsh:
  $ spriteslicer completion zsh > "${fpath[1]}/_spriteslicer"

Fish:
  $ spriteslicer completion fish > ~/.config/fish/completions/spriteslicer.fish

PowerShell:
  PS> spriteslicer completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeImages offers image files with a supported extension for the
// first positional argument.
func completeImages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	exts := make([]string, len(pixel.SupportedExtensions))
	for i, ext := range pixel.SupportedExtensions {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}
