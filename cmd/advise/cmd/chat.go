package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/corey/goodadvice/internal/app"
	"github.com/spf13/cobra"
)

var chatPrompt string

// resetCommand typed on its own line forgets the conversation so far.
const resetCommand = "/reset"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the advisor interactively",
	Long: "Reads one message per line from stdin and prints the advisor's reply. The conversation is kept until EOF.\n" +
		"A line reading /reset starts a fresh conversation.",
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatPrompt, "prompt", "p", "", "system prompt presetting the analysis (default: advisor.prompt)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	adv, err := app.ChatAdvisor(cfg, chatPrompt, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	interactive := isStdinTTY()
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		if interactive {
			fmt.Fprint(out, "message> ")
		}
		if !sc.Scan() {
			break
		}
		msg := strings.TrimSpace(sc.Text())
		if msg == "" {
			continue
		}
		if msg == resetCommand {
			n := adv.Turns()
			adv.Reset()
			fmt.Fprintf(out, "conversation cleared (%d turns)\n", n)
			continue
		}

		reply, err := adv.AdviseAbout(ctx, msg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, reply)
		fmt.Fprintln(out, "-------------")
	}
	return sc.Err()
}
