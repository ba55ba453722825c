package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/mhagger/git-when-merged/whenmerged"
	"github.com/mhagger/git-when-merged/whenmerged/gitsource"
	"github.com/mhagger/git-when-merged/whenmerged/pkg/logger"
)

const configHelp = `Configuration:
  whenmerged.<name>.pattern
      Regular expressions that match reference names for the pattern called
      <name>. A regexp is sought in the full reference name, in the form
      "refs/heads/master". This option can be multivalued, in which case
      references matching any of the patterns are considered. For example,

          git config whenmerged.default.pattern '^refs/heads/master$'
          git config --add whenmerged.default.pattern '^refs/heads/maint$'

  whenmerged.abbrev
      If this value is set to a positive integer, then SHA-1s are abbreviated
      to this number of characters (or longer if needed to avoid ambiguity).
      This value can be overridden using --abbrev=N or --no-abbrev.
`

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "git-when-merged <commit> [<branch>...]",
	Short: "Find when a commit was merged into one or more branches",
	Long: `Find the merge commit that brought COMMIT into the specified BRANCH(es).

Specifically, look for the oldest commit on the first-parent history of each
BRANCH that contains the COMMIT as an ancestor.`,
	Example: `  git-when-merged 0a1b                     # find the merge into the current branch
  git-when-merged 0a1b v1.10 v1.11         # find merge into given tags/branches
  git-when-merged 0a1b -p 'feature-[0-9]+' # specify tags/branches by regexp
  git-when-merged 0a1b -n releases         # use whenmerged.releases.pattern
  git-when-merged -r 0a1b                  # show each intermediate merge
  git-when-merged -l 0a1b                  # show the log for the merge commit
  git-when-merged -d 0a1b                  # show the diff for the merge commit
  git-when-merged -c 0a1b                  # print only the merge's SHA-1`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// potentially enable profiling
		if p, _ := cmd.Flags().GetString("profile"); p != "" {
			dir, _ := os.MkdirTemp("", "profile")
			defer func() {
				fn := filepath.Join(dir, p+".pprof")
				abs, _ := filepath.Abs(os.Args[0])
				fmt.Printf("to view profile, run `go tool pprof --pdf %s %s`\n", abs, fn)
			}()
			switch p {
			case "cpu":
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
			case "mem":
				defer profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
			case "trace":
				defer profile.Start(profile.TraceProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
			case "block":
				defer profile.Start(profile.BlockProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
			default:
				exitWithErr(errors.Errorf("unknown profile type: %v", p))
			}
		}

		log := logger.Discard
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log = logger.NewDefaultLogger(os.Stderr)
		}

		names, _ := cmd.Flags().GetStringArray("name")
		if useDefault, _ := cmd.Flags().GetBool("default"); useDefault {
			names = append(names, "default")
		}
		patterns, _ := cmd.Flags().GetStringArray("pattern")

		opts := whenmerged.Opts{
			Commit:   args[0],
			Branches: args[1:],
			Patterns: patterns,
			Names:    names,
			Diag:     os.Stderr,
			Logger:   log,
		}
		opts.Recursive, _ = cmd.Flags().GetBool("recursive")
		opts.ShowCommit, _ = cmd.Flags().GetBool("show-commit")
		opts.ShowBranch, _ = cmd.Flags().GetBool("show-branch")
		opts.Abbrev, _ = cmd.Flags().GetInt("abbrev")
		opts.AbbrevSet = cmd.Flags().Changed("abbrev")
		opts.NoAbbrev, _ = cmd.Flags().GetBool("no-abbrev")
		opts.Describe, _ = cmd.Flags().GetBool("describe")
		opts.DescribeContains, _ = cmd.Flags().GetBool("describe-contains")
		opts.Log, _ = cmd.Flags().GetBool("log")
		opts.Diff, _ = cmd.Flags().GetBool("diff")
		opts.Visualize, _ = cmd.Flags().GetBool("visualize")

		src := gitsource.New(gitsource.Opts{RepoDir: ".", Logger: log})

		if err := whenmerged.Run(ctx, os.Stdout, src, opts); err != nil {
			var exit *whenmerged.ExitError
			if errors.As(err, &exit) {
				fmt.Fprintln(os.Stderr, exit.Msg)
				os.Exit(1)
			}
			exitWithErr(err)
		}
	},
}

func exitWithErr(err error) {
	fmt.Fprintln(color.Error, color.RedString("failed with error: %v", err.Error()))
	os.Exit(1)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Flags().StringArrayP("pattern", "p", nil, "report merges into references matching the regexp")
	rootCmd.Flags().StringArrayP("name", "n", nil, "report merges into references matching the configured whenmerged.<name>.pattern")
	rootCmd.Flags().BoolP("default", "s", false, `shorthand for "--name=default"`)
	rootCmd.Flags().BoolP("recursive", "r", false, "follow merges back recursively")
	rootCmd.Flags().BoolP("show-commit", "c", false, "display only the SHA-1 of the merge commit; exit non-zero if the commit was not merged via a merge commit")
	rootCmd.Flags().BoolP("show-branch", "b", false, "display the range of commits merged at the same time as the commit; exit non-zero if it was not merged via a merge commit")
	rootCmd.Flags().Int("abbrev", 0, "abbreviate SHA-1s to this number of characters (or more to avoid ambiguity)")
	rootCmd.Flags().Bool("no-abbrev", false, "do not abbreviate SHA-1s")
	rootCmd.Flags().Bool("describe", false, "describe the merge commit by the most recent reachable tag")
	rootCmd.Flags().Bool("describe-contains", false, "describe the merge commit by a nearby tag that contains it")
	rootCmd.Flags().BoolP("log", "l", false, "show the log for the merge commit")
	rootCmd.Flags().BoolP("diff", "d", false, "show the diff for the merge commit")
	rootCmd.Flags().BoolP("visualize", "v", false, "visualize the merge commit using gitk")
	rootCmd.Flags().Bool("debug", false, "log the git commands being run to stderr")
	rootCmd.Flags().String("profile", "", "one of mem, cpu, block, trace or empty to disable")
	rootCmd.MarkFlagsMutuallyExclusive("show-commit", "show-branch")
	rootCmd.MarkFlagsMutuallyExclusive("abbrev", "no-abbrev", "describe", "describe-contains")
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + "\n" + configHelp)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
