package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/jeni-ai/jeni/pkg/usecase/chat"
	"github.com/jeni-ai/jeni/pkg/usecase/identity"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg       config
		sessionID string
		userID    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "session-id",
			Usage:       "Session ID to continue (a fresh dev session is generated when omitted)",
			Sources:     cli.EnvVars("JENI_SESSION_ID"),
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "Actor ID owning the memory namespace",
			Sources:     cli.EnvVars("JENI_USER_ID"),
			Destination: &userID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with the agent",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			// The CLI is the dev/test entry path: flags stand in for the
			// invocation payload, there is no runtime context.
			payload := identity.Payload{}
			if sessionID != "" {
				payload["session_id"] = sessionID
			}
			if userID != "" {
				payload["user_id"] = userID
			}
			resolved := identity.Resolve(payload, nil)

			session, err := chat.NewSession(ctx, gemini, resolved)
			if err != nil {
				return goerr.Wrap(err, "failed to create chat session")
			}

			fmt.Fprintf(c.Root().Writer, "Session %s (actor %s). Type 'exit' to quit.\n",
				resolved.SessionID, resolved.ActorID)

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				if line == "exit" {
					break
				}
				if line == "" {
					continue
				}

				wait := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				wait.Start()
				first := true

				err = session.Send(ctx, line, func(chunk string) error {
					if first {
						wait.Stop()
						first = false
					}
					fmt.Fprint(c.Root().Writer, chunk)
					return nil
				})
				wait.Stop()
				if err != nil {
					return goerr.Wrap(err, "failed to send message")
				}
				fmt.Fprintln(c.Root().Writer)
			}

			facts := session.Facts()
			if !facts.Empty() {
				fmt.Fprintf(c.Root().Writer, "\nFacts learned this session: %v\n", facts.Fields())
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
