package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
)

var (
	deviceURL    string
	dashboardURL string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "wqctl",
	Short: "wqctl - water quality station tooling",
	Long: `wqctl talks to station devices and to the dashboard: it reads and triggers
devices, saves automatic test settings and can emulate a device for development.`,
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func init() {
	_ = godotenv.Load(".env")

	rootCmd.PersistentFlags().StringVar(&deviceURL, "device", envOr(common.EnvKeyWQDeviceBaseURL, "http://192.168.1.50"), "device base URL")
	rootCmd.PersistentFlags().StringVar(&dashboardURL, "dashboard", envOr(common.EnvKeyWQDashboardURL, "http://localhost:1080/dashboard"), "dashboard URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", device.DefaultTimeout, "request timeout")
}

func main() {
	defer common.SyncLogger()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func contextWithTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// the dashboard re-polls the device after a test trigger, leave room for both calls
	return context.WithTimeout(cmd.Context(), 2*timeout+time.Second)
}
