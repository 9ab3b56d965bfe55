package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sersmask/pkg/render"
)

// batchExts are the file extensions batch.Load understands.
var batchExts = []string{"toml", "yaml", "yml", "json"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sersmask.

Batch arguments complete to .toml, .yaml and .json files; --format and
--cache complete to the supported values.

  $ source <(sersmask completion bash)
  $ sersmask completion zsh > "${fpath[1]}/_sersmask"
  $ sersmask completion fish > ~/.config/fish/completions/sersmask.fish
  PS> sersmask completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeBatchFile completes the single batch file argument.
func completeBatchFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return batchExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes --format with the known artifact formats.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeCacheBackends completes --cache.
func completeCacheBackends(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{cacheFile, cacheRedis, cacheNone}, cobra.ShellCompDirectiveNoFileComp
}
