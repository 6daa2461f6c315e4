package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a completion script for your shell. Besides commands and
flags it completes roles, session statuses, accept/decline and the
destinations of 'freementors ui'.

Bash:
  $ source <(freementors completion bash)

Zsh:
  $ freementors completion zsh > "${fpath[1]}/_freementors"

Fish:
  $ freementors completion fish > ~/.config/fish/completions/freementors.fish

PowerShell:
  PS> freementors completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}

type completionFunc func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// completeAt applies fn only to the positional argument at index pos.
func completeAt(pos int, fn completionFunc) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != pos {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return fn(cmd, args, toComplete)
	}
}

func completeRoles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, r := range domain.AllRoles() {
		out = append(out, r.String()+"\t"+r.Label())
	}
	return filterPrefix(out, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeStatuses(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, s := range domain.AllMentorshipStatuses() {
		out = append(out, strings.ToLower(string(s)))
	}
	return filterPrefix(out, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeResponseActions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := []string{"accept\tmove the request to ACCEPTED", "decline\tmove the request to REJECTED"}
	return filterPrefix(out, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeDestinations(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, d := range authz.NewRouter().Destinations() {
		if d.Path == authz.PathUnauthorized {
			continue
		}
		out = append(out, d.Path+"\t"+d.Title)
	}
	return filterPrefix(out, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// filterPrefix keeps candidates whose value (before the tab-separated
// description) starts with prefix, case-insensitively.
func filterPrefix(candidates []string, prefix string) []string {
	prefix = strings.ToLower(prefix)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		value, _, _ := strings.Cut(c, "\t")
		if strings.HasPrefix(strings.ToLower(value), prefix) {
			out = append(out, c)
		}
	}
	return out
}
