// Command runner drives the server from the outside: create-game opens a
// lobby via a transient connection and prints its id; run-game creates N
// games and spawns the bot binaries that play them, collecting winners
// (spec.md §6.4). Subcommands are a cobra tree, grounded on
// Seednode-partybox's root-command-plus-subcommand layout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/scotlandyard/server/internal/protocol"
)

func main() {
	root := &cobra.Command{Use: "runner", Short: "Create and run Scotland Yard games against a server"}

	var server string
	var numDetectives int
	createCmd := &cobra.Command{
		Use:   "create-game",
		Short: "Create a lobby and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := createGame(server, numDetectives)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	createCmd.Flags().StringVar(&server, "server", "ws://127.0.0.1:8081/ws", "server websocket URL")
	createCmd.Flags().IntVar(&numDetectives, "detectives", 5, "number of detectives")

	var botA, botB string
	var count int
	runCmd := &cobra.Command{
		Use:   "run-game",
		Short: "Create N games and spawn bot binaries to play them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGames(server, botA, botB, count, numDetectives)
		},
	}
	runCmd.Flags().StringVar(&server, "server", "ws://127.0.0.1:8081/ws", "server websocket URL")
	runCmd.Flags().StringVar(&botA, "bot-a", "", "path to the first bot binary")
	runCmd.Flags().StringVar(&botB, "bot-b", "", "path to the second bot binary")
	runCmd.Flags().IntVar(&count, "count", 1, "number of games to run")
	runCmd.Flags().IntVar(&numDetectives, "detectives", 5, "number of detectives per game")

	root.AddCommand(createCmd, runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createGame(server string, numDetectives int) (string, error) {
	conn, _, err := websocket.DefaultDialer.Dial(server, nil)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", server, err)
	}
	defer conn.Close()

	frame, err := protocol.Encode(protocol.TypeCreateGame, protocol.CreateGamePayload{NumberOfDetectives: numDetectives})
	if err != nil {
		return "", err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return "", err
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read game reply: %w", err)
	}
	env, err := protocol.Decode(data)
	if err != nil {
		return "", err
	}
	var payload protocol.GamePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return "", err
	}
	return payload.ID, nil
}

// botResult is the one JSON line every bot binary emits on exit (spec.md §6.4).
type botResult struct {
	Winner string `json:"winner"`
}

func runGames(server, botA, botB string, count, numDetectives int) error {
	for i := 0; i < count; i++ {
		gameID, err := createGame(server, numDetectives)
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}

		winnerA, err := spawnBot(botA, server, gameID)
		if err != nil {
			return fmt.Errorf("game %d bot-a: %w", i, err)
		}
		winnerB, err := spawnBot(botB, server, gameID)
		if err != nil {
			return fmt.Errorf("game %d bot-b: %w", i, err)
		}

		fmt.Printf("game %s: bot-a winner=%s bot-b winner=%s\n", gameID, winnerA, winnerB)
	}
	return nil
}

func spawnBot(path, server, gameID string) (string, error) {
	cmd := exec.Command(path, "--server", server, "--game-id", gameID, "--simple-output")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run bot %s: %w", path, err)
	}

	var result botResult
	if err := json.Unmarshal(out, &result); err != nil {
		return "", fmt.Errorf("parse bot output: %w", err)
	}
	return result.Winner, nil
}
