package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"liyu1981.xyz/water-quality-dashboard/pkg/autotest"
)

var settingsForm autotest.Form
var settingsStationID uint

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage automatic test settings",
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a station's automatic test schedule",
	Long: `Validate the schedule locally, then post it to the dashboard the way the
settings panel does. Only the fields of the chosen mode are sent.`,
	RunE: runSettingsSave,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSaveCmd)

	f := settingsSaveCmd.Flags()
	f.UintVar(&settingsStationID, "station", 0, "station id")
	f.StringVar(&settingsForm.Mode, "mode", "hourly", "hourly, daily or monthly")
	f.StringVar(&settingsForm.IntervalHours, "hours", "", "hourly: interval in hours")
	f.StringVar(&settingsForm.IntervalDays, "days", "", "daily: interval in days")
	f.StringVar(&settingsForm.IntervalMonths, "months", "", "monthly: interval in months")
	f.StringVar(&settingsForm.DayOfMonth, "day", "", "monthly: day of month")
	f.StringVar(&settingsForm.TimeOfDay, "time", "", "daily/monthly: time of day, HH:MM")
	f.StringVar(&settingsForm.Enabled, "enabled", "0", "1 to enable the schedule")
}

func runSettingsSave(cmd *cobra.Command, args []string) error {
	if settingsStationID != 0 {
		settingsForm.StationID = strconv.FormatUint(uint64(settingsStationID), 10)
	}

	res, err := autotest.NewClient(dashboardURL, timeout).Save(cmd.Context(), settingsForm)
	if err != nil {
		var verr *autotest.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("not sent: %s", verr.Message)
		}
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Println(res.Message)
	return nil
}
