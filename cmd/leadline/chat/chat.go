// Package chatcmder provides the chat command for talking to a running
// leadline server from the terminal.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/papercomputeco/leadline/api"
	"github.com/papercomputeco/leadline/pkg/assistant"
	"github.com/papercomputeco/leadline/pkg/cliui"
	"github.com/papercomputeco/leadline/pkg/config"
	"github.com/papercomputeco/leadline/pkg/credentials"
	"github.com/papercomputeco/leadline/pkg/dotdir"
	"github.com/papercomputeco/leadline/pkg/logger"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("sophia> ")
)

// chatFlags are the registry flags "leadline chat" accepts.
var chatFlags = []string{
	config.FlagServerTarget,
	config.FlagHistoryFile,
	config.FlagAudience,
}

type chatCommander struct {
	serverTarget string
	historyFile  string
	audience     string
	userID       string
	threadID     string
	reset        bool
	debug        bool
	configDir    string

	in         io.Reader
	out        io.Writer
	markdown   bool
	httpClient *http.Client
	logger     *slog.Logger
}

// chatRequest is the body POSTed to the server.
type chatRequest struct {
	Message  string               `json:"message"`
	History  []dotdir.HistoryTurn `json:"history"`
	UserID   string               `json:"user_id,omitempty"`
	ThreadID string               `json:"thread_id,omitempty"`
}

const chatLongDesc string = `Start an interactive chat session with a leadline server.

Each turn is sent with the conversation so far, which is kept in
history.json in the .leadline/ directory so a session can be resumed.

Commands:
  /reset    Start a new conversation
  /exit     Quit (Ctrl+D also works)

Set --audience to attach a Google ID token when the server requires an
authenticated invoker. The key file stored for the "client" service is used
when present, otherwise Application Default Credentials.

Examples:
  leadline chat
  leadline chat --server https://leadline.example.run.app --audience https://leadline.example.run.app
  leadline chat --reset`

const chatShortDesc string = "Chat with a leadline server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, chatFlags)

			cfg, err := config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.serverTarget = cfg.Client.ServerTarget
			cmder.historyFile = cfg.Client.HistoryFile
			cmder.audience = cfg.Client.Audience
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.markdown = cmder.out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx)
		},
	}

	for _, key := range chatFlags {
		var target string
		config.AddStringFlag(cmd, config.Flags, key, &target)
	}
	cmd.Flags().StringVar(&cmder.userID, "user-id", "", "User ID sent with each turn")
	cmd.Flags().StringVar(&cmder.threadID, "thread-id", "", "Thread ID sent with each turn (default: a new UUID)")
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Discard the saved history before starting")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if c.logger == nil {
		c.logger = logger.New(logger.WithPretty(true), logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))
	}
	if c.threadID == "" {
		c.threadID = uuid.NewString()
	}

	if c.httpClient == nil {
		client, err := c.newHTTPClient(ctx)
		if err != nil {
			return err
		}
		c.httpClient = client
	}

	historyPath, err := c.resolveHistoryPath()
	if err != nil {
		return err
	}
	if c.reset {
		if err := dotdir.ClearHistory(historyPath); err != nil {
			return err
		}
	}

	history, err := dotdir.LoadHistory(historyPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	if len(history) > 0 {
		fmt.Fprintf(c.out, "  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", len(history))),
		)
	} else {
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	fmt.Fprintf(c.out, "  %s %s\n\n", cliui.KeyStyle.Render("Server:"), cliui.NameStyle.Render(c.serverTarget))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /reset starts over, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}
		if input == "/reset" {
			history = []dotdir.HistoryTurn{}
			if err := dotdir.ClearHistory(historyPath); err != nil {
				return err
			}
			c.threadID = uuid.NewString()
			fmt.Fprintf(c.out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			continue
		}

		resp, err := c.send(ctx, input, history)
		if err != nil {
			fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		c.printReply(resp)

		history = append(history,
			dotdir.HistoryTurn{Role: "user", Text: input},
			dotdir.HistoryTurn{Role: "assistant", Text: resp.Response},
		)

		if resp.ShouldComplete {
			fmt.Fprintf(c.out, "  %s Conversation complete. Starting a new one.\n\n", cliui.SuccessMark)
			history = []dotdir.HistoryTurn{}
			c.threadID = uuid.NewString()
		}

		if err := dotdir.SaveHistory(historyPath, history); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

func (c *chatCommander) resolveHistoryPath() (string, error) {
	if c.historyFile != "" {
		return c.historyFile, nil
	}
	return dotdir.NewManager().HistoryPath(c.configDir)
}

// newHTTPClient returns a client that attaches ID tokens when an audience is
// configured.
func (c *chatCommander) newHTTPClient(ctx context.Context) (*http.Client, error) {
	// Replies can take a while when the model is busy.
	const timeout = 2 * time.Minute

	if c.audience == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	file, err := mgr.CredentialsFile(credentials.ServiceClient)
	if err != nil {
		return nil, err
	}

	ts, err := credentials.IDTokenSource(ctx, c.audience, file)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = timeout
	return client, nil
}

func (c *chatCommander) send(ctx context.Context, input string, history []dotdir.HistoryTurn) (*assistant.Response, error) {
	body, err := json.Marshal(chatRequest{
		Message:  input,
		History:  history,
		UserID:   c.userID,
		ThreadID: c.threadID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"server", c.serverTarget,
		"history_turns", len(history),
		"thread_id", c.threadID,
	)

	url := strings.TrimRight(c.serverTarget, "/") + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Detail != "" {
				return nil, fmt.Errorf("server returned %d: %s (%s)", resp.StatusCode, apiErr.Error, apiErr.Detail)
			}
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out assistant.Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if out.Response == "" {
		return nil, errors.New("server returned an empty reply")
	}
	return &out, nil
}

func (c *chatCommander) printReply(resp *assistant.Response) {
	text := resp.Response
	if c.markdown {
		if rendered, err := cliui.RenderMarkdown(text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}

	fmt.Fprintf(c.out, "%s%s\n", assistantPrompt, text)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%s · %.2fs", resp.Stage, resp.TotalLatency)))
}
