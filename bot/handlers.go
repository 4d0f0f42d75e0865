/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"pickleball-brackets/api/api"
	"pickleball-brackets/api/external"
	"pickleball-brackets/api/session"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds how long a command may wait on the store and upstream
const commandTimeout = 10 * time.Second

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Pickleball Brackets Bot\n")
	res.WriteString(fmt.Sprintf("Showing event: %s\n", b.Event))
	res.WriteString("`$teams [filter]`: lists the teams in the event. Players are matched on the start of their first name, nickname or last name\n")
	res.WriteString("`$bracket [filter]`: shows the bracket. With a filter only the parts containing matching teams are shown and matching teams are marked with *\n")
	res.WriteString("`$standings`: shows the round robin standings\n")
	res.WriteString("`$schedule [filter]`: shows the tournament schedule. With a filter only events whose name matches are shown\n")
	res.WriteString("`$select <matchId>`: marks a match and every other slot holding the same team\n")
	res.WriteString("`$clear`: clears this channel's filter and selection\n")
	res.WriteString("Names that contain two or more words need to be encased in \" (e.g. \"van der\")\n")
	discord.ChannelMessageSend(message.ChannelID, res.String())
}

// teamsHandler handles the $teams command with a DiscordSession interface
func (b *Bot) teamsHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	filter := strings.Join(commandArgs(message.Content), " ")
	teams, err := b.APIPtr.GetTeams(ctx, b.Event, filter)
	if err != nil {
		log.Println(err)
		discord.ChannelMessageSend(message.ChannelID, errorMessage("getting the teams list", err))
		return
	}
	b.send(discord, message.ChannelID, api.FormatTeams(teams))
}

// bracketHandler handles the $bracket command with a DiscordSession interface. The filter is remembered by the
// channel until it is changed or cleared
func (b *Bot) bracketHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	s, err := b.channelSession(ctx, message.ChannelID)
	if err != nil {
		log.Println(err)
		discord.ChannelMessageSend(message.ChannelID, errorMessage("getting the bracket", err))
		return
	}

	if args := commandArgs(message.Content); len(args) > 0 {
		if err := s.Dispatch(session.Event{Type: session.FilterChanged, Filter: strings.Join(args, " ")}); err != nil {
			log.Println(err)
			discord.ChannelMessageSend(message.ChannelID, errorMessage("filtering the bracket", err))
			return
		}
	}
	b.sendView(discord, message.ChannelID, s)
}

// standingsHandler handles the $standings command with a DiscordSession interface
func (b *Bot) standingsHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rows, err := b.APIPtr.GetStandings(ctx, b.Event)
	if err != nil {
		if !errors.Is(err, api.ErrNotRoundRobin) {
			log.Println(err)
		}
		discord.ChannelMessageSend(message.ChannelID, errorMessage("getting the standings", err))
		return
	}
	b.send(discord, message.ChannelID, api.FormatStandings(rows))
}

// scheduleHandler handles the $schedule command with a DiscordSession interface
func (b *Bot) scheduleHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	filter := strings.Join(commandArgs(message.Content), " ")
	view, err := b.APIPtr.GetSchedule(ctx, filter)
	if err != nil {
		log.Println(err)
		discord.ChannelMessageSend(message.ChannelID, errorMessage("getting the schedule", err))
		return
	}
	b.send(discord, message.ChannelID, api.FormatSchedule(view))
}

// selectHandler handles the $select command with a DiscordSession interface
func (b *Bot) selectHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	args := commandArgs(message.Content)
	if len(args) != 1 {
		discord.ChannelMessageSend(message.ChannelID, "Usage: `$select <matchId>`")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		discord.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a match id", args[0]))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	s, err := b.channelSession(ctx, message.ChannelID)
	if err != nil {
		log.Println(err)
		discord.ChannelMessageSend(message.ChannelID, errorMessage("getting the bracket", err))
		return
	}

	// A held selection is replaced rather than toggled so repeating the command keeps the match selected
	if err := s.Dispatch(session.Event{Type: session.Clear}); err != nil {
		log.Println(err)
	}
	if err := s.Dispatch(session.Event{Type: session.Click, MatchID: &id}); err != nil {
		discord.ChannelMessageSend(message.ChannelID, errorMessage("selecting the match", err))
		return
	}
	b.sendView(discord, message.ChannelID, s)
}

// clearHandler handles the $clear command with a DiscordSession interface
func (b *Bot) clearHandler(discord DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	s, err := b.channelSession(ctx, message.ChannelID)
	if err != nil {
		log.Println(err)
		discord.ChannelMessageSend(message.ChannelID, errorMessage("getting the bracket", err))
		return
	}
	for _, e := range []session.Event{{Type: session.FilterChanged}, {Type: session.Clear}} {
		if err := s.Dispatch(e); err != nil {
			log.Println(err)
		}
	}
	discord.ChannelMessageSend(message.ChannelID, "Filter and selection cleared")
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(discord DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author.ID == botUserID {
		return
	}
	if !startsWith(message.Content, "$") {
		return
	}
	if !b.allow(message.Author.ID) {
		discord.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%s, slow down a little", message.Author.Username))
		return
	}

	// Route to appropriate handler
	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(discord, message)

	case startsWith(message.Content, "$teams"):
		b.teamsHandler(discord, message)

	case startsWith(message.Content, "$bracket"):
		b.bracketHandler(discord, message)

	case startsWith(message.Content, "$standings"):
		b.standingsHandler(discord, message)

	case startsWith(message.Content, "$schedule"):
		b.scheduleHandler(discord, message)

	case startsWith(message.Content, "$select"):
		b.selectHandler(discord, message)

	case startsWith(message.Content, "$clear"):
		b.clearHandler(discord, message)
	}
}

// Helper function to render a session's view and send it
func (b *Bot) sendView(discord DiscordSession, channelID string, s *session.Session) {
	view, err := s.View()
	if err != nil {
		log.Println(err)
		discord.ChannelMessageSend(channelID, errorMessage("rendering the bracket", err))
		return
	}
	b.send(discord, channelID, api.FormatView(view))
}

// Helper function to send a response as one or more code blocks so the bracket indentation is kept
func (b *Bot) send(discord DiscordSession, channelID string, text string) {
	for _, chunk := range chunkMessage(text) {
		if _, err := discord.ChannelMessageSend(channelID, "```\n"+chunk+"```"); err != nil {
			log.Println("failed to send message:", err)
			return
		}
	}
}

// Helper function to turn an error into a message for the channel
func errorMessage(action string, err error) string {
	switch {
	case errors.Is(err, api.ErrNotRoundRobin):
		return "This event is not a round robin, use `$bracket` instead"
	case errors.Is(err, session.ErrUnknownNode):
		return "There is no match with that id in the bracket"
	case errors.Is(err, external.ErrNotFound):
		return "The event could not be found"
	case errors.Is(err, external.ErrCaptcha):
		return "The tournament site is asking for a captcha, try again later"
	}
	return fmt.Sprintf("An error occurred %s", action)
}
