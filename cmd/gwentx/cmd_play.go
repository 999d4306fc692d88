package main

import (
	"github.com/spf13/cobra"

	gwentnet "github.com/peterkuimelis/gwentx/internal/net"
)

var (
	hostDeck    string
	hostPort    string
	hostName    string
	hostBot     bool
	hostBotDeck string
	hostSeed    int64

	joinDeck string
	joinAddr string
	joinName string
)

// hostCmd starts a game server and plays as the first seat
var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a game and play as P1",
	Long: `Host a game on a TCP port and wait for an opponent to run 'gwentx join'.
With --bot the opponent is the built-in bot and no port is opened.`,
	RunE: runHost,
}

// joinCmd connects to a hosted game
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a hosted game as P2",
	RunE:  runJoin,
}

func init() {
	hostCmd.Flags().StringVarP(&hostDeck, "deck", "d", "1", "Deck number or name")
	hostCmd.Flags().StringVarP(&hostPort, "port", "p", "7777", "TCP port to listen on")
	hostCmd.Flags().StringVar(&hostName, "name", "", "Display name")
	hostCmd.Flags().BoolVar(&hostBot, "bot", false, "Play against the built-in bot")
	hostCmd.Flags().StringVar(&hostBotDeck, "bot-deck", "2", "Bot deck number or name")
	hostCmd.Flags().Int64Var(&hostSeed, "seed", 0, "Seed for shuffles and the coin toss (0 = random)")

	joinCmd.Flags().StringVarP(&joinDeck, "deck", "d", "2", "Deck number or name")
	joinCmd.Flags().StringVarP(&joinAddr, "addr", "a", "localhost:7777", "Server address")
	joinCmd.Flags().StringVar(&joinName, "name", "", "Display name")
}

func runHost(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	srv := &gwentnet.Server{
		Catalog:  cat,
		Rules:    cfg.GameRules(),
		Addr:     ":" + hostPort,
		HostDeck: hostDeck,
		HostName: hostName,
		VsBot:    hostBot,
		BotDeck:  hostBotDeck,
		Tuning:   cfg.Bot,
		Seed:     hostSeed,
		Log:      logger,
		In:       cmd.InOrStdin(),
		Out:      cmd.OutOrStdout(),
	}
	if st != nil {
		defer st.Close()
		srv.Recorder = st
	}
	return srv.Run(cmd.Context())
}

func runJoin(cmd *cobra.Command, args []string) error {
	return gwentnet.ConnectWith(cmd.Context(), joinAddr, joinDeck, joinName, cmd.InOrStdin(), cmd.OutOrStdout())
}
