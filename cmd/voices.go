package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/speech"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List installed Mandarin voices",
	RunE: func(cmd *cobra.Command, args []string) error {
		preferred, _ := cmd.Flags().GetString("voice")
		mode, _ := cmd.Flags().GetString("log-mode")
		logFile, _ := cmd.Flags().GetString("log-file")
		log, err := logger.New(mode, logFile)
		if err != nil {
			return err
		}
		defer log.Sync()

		catalog := speech.LoadCatalog(cmd.Context(), log, speech.DefaultBackends()...)
		if !catalog.Available() {
			fmt.Println("No speech synthesiser found (tried say and espeak-ng).")
			return nil
		}

		voices := speech.Mandarin(catalog.Voices())
		if len(voices) == 0 {
			fmt.Printf("No Mandarin voices installed; words will be read with the default %s voice.\n", speech.FallbackLang)
			return nil
		}

		selected, _ := speech.Select(catalog.Voices(), preferred)
		fmt.Printf("  %-28s  %-8s  %-10s  %s\n", "ID", "Lang", "Backend", "Name")
		fmt.Println(strings.Repeat("─", 64))
		for _, v := range voices {
			mark := " "
			if v.ID == selected.ID && v.Backend == selected.Backend {
				mark = "*"
			}
			fmt.Printf("%s %-28s  %-8s  %-10s  %s\n", mark, truncate(v.ID, 28), v.Lang, v.Backend, v.Name)
		}
		return nil
	},
}

func init() {
	voicesCmd.Flags().String("voice", "", "Preferred voice ID, to preview which voice would be used")
}
