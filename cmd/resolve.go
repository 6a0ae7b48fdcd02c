package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ventia-app/ventia/core/config"
)

var resolveRulesOnly bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [texto]",
	Short: "Resuelve una consulta y muestra el intent en JSON",
	Args:  cobra.MinimumNArgs(1),
	Run:   resolveQuery,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveRulesOnly, "rules-only", false, "omite el modelo alojado y usa solo las reglas locales")
	rootCmd.AddCommand(resolveCmd)
}

func resolveQuery(_ *cobra.Command, args []string) {
	cfg := config.Global
	if resolveRulesOnly {
		cfg.AI.APIKey = ""
	}

	orchestrator := buildOrchestrator(cfg)
	text := strings.Join(args, " ")

	resolution := orchestrator.Resolve(context.Background(), text)

	out, err := json.MarshalIndent(resolution, "", "  ")
	if err != nil {
		logrus.Fatalln(err)
	}
	fmt.Println(string(out))
}
