/* bot.go
 * Contains logic used for creating the bot and the per channel state it keeps. Requires a discord bot token, an ApiPtr
 * and the name of the event the bot shows, all of which are passed in from main.go
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pickleball-brackets/api/api"
	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/session"

	"github.com/go-andiamo/splitter"
	"golang.org/x/time/rate"
)

// maxMessageLength is the largest message discord accepts, less room for the code block fence
const maxMessageLength = 1990

type Bot struct {
	BotToken string
	APIPtr   *api.API
	Event    string

	// Each user may send one command every userRate, with bursts of userBurst
	userRate  rate.Limit
	userBurst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	channels map[string]*channelState
}

// channelState is the bracket a channel is looking at. Each channel filters and selects independently of the others
type channelState struct {
	session  *session.Session
	snapshot *bracket.Snapshot
}

func NewBot(botToken string, apiPtr *api.API, event string) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if event == "" {
		return nil, fmt.Errorf("event is required but none was provided")
	}

	return &Bot{
		BotToken:  botToken,
		APIPtr:    apiPtr,
		Event:     event,
		userRate:  rate.Limit(0.5),
		userBurst: 3,
		limiters:  make(map[string]*rate.Limiter),
		channels:  make(map[string]*channelState),
	}, nil
}

// allow reports whether a user may run a command now
func (b *Bot) allow(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	limiter, ok := b.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(b.userRate, b.userBurst)
		b.limiters[userID] = limiter
	}
	return limiter.Allow()
}

// channelSession returns the session of a channel, reloading it when the event's snapshot has been refreshed. The
// channel's filter is kept across reloads
// Preconditions: Receives context and channel id
// Postconditions: Returns a loaded session, or an error if the event could not be loaded
func (b *Bot) channelSession(ctx context.Context, channelID string) (*session.Session, error) {
	eventSession, err := b.APIPtr.Session(ctx, b.Event)
	if err != nil {
		return nil, err
	}
	snapshot := eventSession.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.channels[channelID]
	if !ok {
		state = &channelState{session: session.New()}
		b.channels[channelID] = state
	}
	if state.snapshot != snapshot {
		state.session.Load(snapshot)
		state.snapshot = snapshot
	}
	return state.session, nil
}

// Helper function to split a command into its arguments. Quoted arguments may contain spaces
// e.g. `$teams "van der"` has the single argument `van der`
func commandArgs(content string) []string {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil || len(parts) == 0 {
		return nil
	}
	args := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if arg := strings.TrimSpace(strings.Trim(part, "\"“”")); arg != "" {
			args = append(args, arg)
		}
	}
	return args
}

// Helper function to break a long response into messages discord will accept. Lines are never split
func chunkMessage(text string) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if current.Len()+len(line) > maxMessageLength && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// Function to check if a string starts with substring
// Preconditions: receives strings containing input and substring
// Postconditions: returns true if the input string starts with substring, false otherwise
func startsWith(input string, substring string) bool {
	return strings.HasPrefix(input, substring)
}
