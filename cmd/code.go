package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/file_modifier"
	"github.com/meysamhadeli/reactforge/storage"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// conversationTurns is how many stored messages feed each request.
const conversationTurns = 10

// codeCmd: reactforge code
var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Start an interactive session that applies changes one prompt at a time.",
	Long: `The 'code' subcommand opens a session against the project. Each prompt is applied with
the same pipeline as 'modify', and earlier prompts and results are kept as conversation context
so follow-up requests such as "make it bigger" refer to the previous change.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		defer rootDependencies.Close()
		handleCodeCommand(rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(codeCmd)
}

type codeSession struct {
	deps           *RootDependencies
	conversationID string
	autoCommit     bool
}

func handleCodeCommand(rootDependencies *RootDependencies) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	session := &codeSession{deps: rootDependencies}
	if store := rootDependencies.Store; store != nil {
		conversation, err := store.CreateConversation(ctx, rootDependencies.ProjectID, "interactive session")
		if err != nil {
			logrus.Warnf("Conversation history disabled: %v", err)
		} else {
			session.conversationID = conversation.ID
		}
	}

	go utils.GracefulShutdown(ctx, func() {
		rootDependencies.TokenManagement.ClearToken()
	})

	reader := bufio.NewReader(os.Stdin)
	fmt.Println(lipgloss.BoxStyle.Render("/help  Help for code subcommand"))

	if len(readSources(rootDependencies)) == 0 {
		fmt.Println(lipgloss.Yellow.Render("No project yet: the directory has no React source files."))
	}

	for {
		userInput, err := utils.InputPromptWithContext(ctx, reader)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, utils.ErrInputClosed) {
				fmt.Println(lipgloss.Yellow.Render("Exiting..."))
				return
			}
			fmt.Println(lipgloss.Red.Render(err.Error()))
			continue
		}
		if userInput == "" {
			continue
		}

		handled, exit := session.findCodeSubCommand(ctx, userInput)
		if exit {
			return
		}
		if handled {
			continue
		}

		session.apply(ctx, userInput)
	}
}

func (s *codeSession) apply(ctx context.Context, prompt string) {
	deps := s.deps
	before := readSources(deps)

	result := runModification(ctx, deps, prompt, s.conversationContext(ctx))
	printResult(ctx, result, before, deps.Cwd, deps.Config.Theme)

	s.remember(ctx, "user", prompt)
	s.remember(ctx, "assistant", file_modifier.BuildSummary(prompt, result))

	if s.autoCommit && result.Success {
		commitChanges(ctx, deps, prompt, result)
	}
	deps.displayTokens()
}

func (s *codeSession) conversationContext(ctx context.Context) string {
	if s.conversationID == "" {
		return ""
	}
	history, err := s.deps.Store.ConversationContext(ctx, s.conversationID, conversationTurns)
	if err != nil {
		logrus.Warnf("Failed to load conversation: %v", err)
		return ""
	}
	return history
}

func (s *codeSession) remember(ctx context.Context, role, content string) {
	if s.conversationID == "" {
		return
	}
	if _, err := s.deps.Store.AddMessage(ctx, s.conversationID, role, content); err != nil {
		logrus.Warnf("Failed to store %s message: %v", role, err)
	}
}

func (s *codeSession) findCodeSubCommand(ctx context.Context, command string) (handled bool, exit bool) {
	deps := s.deps
	switch command {
	case "/help":
		helps := "/clear  Clear screen\n/exit  Exit from reactforge\n/token  Token information\n/ledger  Changes recorded in this session\n/history  Stored summaries of earlier requests\n/commit  Toggle committing successful changes\n/reset  Forget the session ledger and cached snapshot"
		fmt.Println(lipgloss.BoxStyle.Render(helps))
	case "/clear":
		fmt.Print("\033[2J\033[H")
	case "/exit":
		return false, true
	case "/token":
		deps.displayTokens()
	case "/ledger":
		printLedgerTable(deps.Modifier.Ledger().Stats(20))
	case "/history":
		printHistory(ctx, deps.Store, deps.ProjectID)
	case "/commit":
		s.autoCommit = !s.autoCommit
		fmt.Printf("Auto-commit: %t\n", s.autoCommit)
	case "/reset":
		utils.ClearGitignoreCache()
		if err := deps.Modifier.Reset(ctx); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Failed to reset session: %v", err)))
		} else {
			fmt.Println(lipgloss.Green.Render("✔ Session reset."))
		}
	default:
		return false, false
	}
	return true, false
}

func printHistory(ctx context.Context, store *storage.Store, projectID string) {
	if store == nil {
		fmt.Println(lipgloss.Yellow.Render("Project store is unavailable."))
		return
	}
	summaries, err := store.ListModificationSummaries(ctx, projectID, 10)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return
	}
	if len(summaries) == 0 {
		fmt.Println(lipgloss.Gray.Render("No earlier requests."))
		return
	}
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]
		mark := lipgloss.Green.Render("✔")
		if !s.Success {
			mark = lipgloss.Red.Render("✘")
		}
		fmt.Printf("%s %s %s\n", mark, lipgloss.Gray.Render(s.CreatedAt.Local().Format("Jan 02 15:04")), s.Summary)
	}
}
