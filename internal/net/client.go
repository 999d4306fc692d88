package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/peterkuimelis/gwentx/internal/game"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn       net.Conn
	in         *bufio.Reader
	out        io.Writer
	playerName string
}

// NewClient wraps an established connection. Prompts are read from in and everything is
// rendered to out.
func NewClient(conn net.Conn, in io.Reader, out io.Writer, playerName string) *Client {
	return &Client{conn: conn, in: bufio.NewReader(in), out: out, playerName: playerName}
}

// Connect connects to a server, sends the deck choice, and runs the REPL on stdin/stdout.
func Connect(ctx context.Context, addr, deck, name string) error {
	return ConnectWith(ctx, addr, deck, name, os.Stdin, os.Stdout)
}

// ConnectWith is Connect with explicit terminal streams.
func ConnectWith(ctx context.Context, addr, deck, name string, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Send join message with deck choice
	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: MsgJoin, Deck: deck, Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Fprintln(out, "Connected! Waiting for game to start...")

	if name == "" {
		name = "P2"
	}
	return NewClient(conn, in, out, name).RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively until the game is over.
func (c *Client) RunREPL(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		var reply *ClientMessage
		switch msg.Type {
		case MsgNotify:
			c.renderEvent(msg.Event)

		case MsgChooseDecision:
			c.renderState(msg.State)
			c.renderOptions(msg.Options)
			idx, err := c.readChoice(len(msg.Options))
			if err != nil {
				return err
			}
			reply = &ClientMessage{Type: MsgDecision, Index: idx}

		case MsgChooseCards:
			c.renderCardChoice(msg.Prompt, msg.Candidates, msg.Min, msg.Max)
			indices, err := c.readCardIndices(len(msg.Candidates), msg.Min, msg.Max)
			if err != nil {
				return err
			}
			reply = &ClientMessage{Type: MsgCards, Indices: indices}

		case MsgChooseLane:
			c.renderLaneChoice(msg.Card, msg.Lanes)
			idx, err := c.readChoice(len(msg.Lanes))
			if err != nil {
				return err
			}
			reply = &ClientMessage{Type: MsgLane, Index: idx}

		case MsgGameOver:
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, msg.Result)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}

		if reply != nil {
			if err := enc.Encode(reply); err != nil {
				return fmt.Errorf("send %s: %w", reply.Type, err)
			}
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	fmt.Fprintf(c.out, "R%d T%-3d %-10s| %s\n", ev.Round, ev.Turn, ev.Phase, ev.Details)
}

func (c *Client) renderState(v *game.View) {
	if v == nil {
		return
	}
	opp, you := v.Opponent, v.You

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(c.out, "║  %s (lives: %d)  Hand: %d  Deck: %d  Graveyard: %d%s\n",
		opp.Name, opp.Life, opp.HandCount, opp.DeckCount, opp.GraveyardCount, passedMark(opp.Passed))
	rows := v.TheirRows().Rows
	for i := len(rows) - 1; i >= 0; i-- {
		fmt.Fprintf(c.out, "║  %s\n", formatRow(rows[i]))
	}
	fmt.Fprintf(c.out, "║  Score: %d\n", v.TheirRows().Score)
	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	fmt.Fprintf(c.out, "║  Score: %d\n", v.MyRows().Score)
	for _, row := range v.MyRows().Rows {
		fmt.Fprintf(c.out, "║  %s\n", formatRow(row))
	}
	leader := "none"
	if you.Leader != "" {
		leader = you.Leader
		if you.LeaderUsed {
			leader += " (used)"
		}
	}
	fmt.Fprintf(c.out, "║  %s (lives: %d)  Hand: %d  Deck: %d  Graveyard: %d%s\n",
		you.Name, you.Life, you.HandCount, you.DeckCount, you.GraveyardCount, passedMark(you.Passed))
	fmt.Fprintf(c.out, "║  Leader: %s\n", leader)
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Round %d | Turn %d | %s", v.Round, v.Turn, v.Phase)
	if v.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(c.out, turnInfo)

	// Show hand
	if len(you.Hand) > 0 {
		fmt.Fprintf(c.out, "\nHand: ")
		for _, cv := range you.Hand {
			fmt.Fprintf(c.out, "%s  ", formatCard(cv))
		}
		fmt.Fprintln(c.out)
	}
}

func passedMark(passed bool) string {
	if passed {
		return "  [passed]"
	}
	return ""
}

func formatRow(row game.RowView) string {
	var marks []string
	if row.Weather {
		marks = append(marks, "weather")
	}
	if row.Horn {
		marks = append(marks, "horn")
	}
	label := fmt.Sprintf("%-6s %3d", row.Lane, row.Score)
	if len(marks) > 0 {
		label += " {" + strings.Join(marks, ",") + "}"
	}
	var cards []string
	for _, cv := range row.Cards {
		cards = append(cards, fmt.Sprintf("[%s %d]", cv.Name, cv.Effective))
	}
	return label + " " + strings.Join(cards, " ")
}

func formatCard(cv game.CardView) string {
	s := cv.Name
	if cv.HasStrength {
		s += fmt.Sprintf(" %d", cv.Strength)
	}
	if cv.Hero {
		s += " ★"
	}
	return "[" + s + "]"
}

func (c *Client) renderOptions(options []OptionView) {
	fmt.Fprintln(c.out, "\nOptions:")
	for _, o := range options {
		fmt.Fprintf(c.out, "  %d) %s\n", o.Index+1, o.Desc)
	}
}

func (c *Client) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Client) readChoice(count int) (int, error) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > count {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1, nil // convert to 0-indexed
	}
}

func (c *Client) renderCardChoice(prompt string, candidates []CandidateView, min, max int) {
	fmt.Fprintf(c.out, "\n%s (select %d", prompt, min)
	if max != min {
		fmt.Fprintf(c.out, "-%d", max)
	}
	fmt.Fprintln(c.out, ")")
	for _, cv := range candidates {
		fmt.Fprintf(c.out, "  %d) %s\n", cv.Index+1, formatCard(cv.CardView))
	}
}

func (c *Client) readCardIndices(count, min, max int) ([]int, error) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		parts := strings.Fields(line)

		if len(parts) < min || len(parts) > max {
			fmt.Fprintf(c.out, "Enter %d-%d numbers separated by spaces\n", min, max)
			continue
		}

		var indices []int
		valid := true
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > count {
				fmt.Fprintf(c.out, "Each number must be between 1 and %d\n", count)
				valid = false
				break
			}
			indices = append(indices, n-1) // convert to 0-indexed
		}
		if valid {
			return indices, nil
		}
	}
}

func (c *Client) renderLaneChoice(card *game.CardView, lanes []string) {
	name := "card"
	if card != nil {
		name = card.Name
	}
	fmt.Fprintf(c.out, "\nChoose a row for %s:\n", name)
	for i, l := range lanes {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, l)
	}
}
