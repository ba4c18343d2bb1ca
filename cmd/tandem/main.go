// Tandem couples independently executing simulation solvers through
// time-windowed data exchange. The CLI runs demo solvers coupled in-process,
// which is handy for exploring scheme configurations before wiring real
// solvers.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tandem",
	Short: "Tandem runs partitioned simulations coupled in time windows.",
	Long: `Tandem runs partitioned simulations coupled in time windows. ` +
		`Participants exchange boundary data through blocking m2n channels ` +
		`and stay synchronized through a serial or star coupling scheme.`,
}

func main() {
	// A .env file may override defaults such as TANDEM_LOG_LEVEL.
	_ = godotenv.Load()

	if lvl := os.Getenv("TANDEM_LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.Fatalf("invalid TANDEM_LOG_LEVEL %q: %v", lvl, err)
		}
		logrus.SetLevel(parsed)
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
