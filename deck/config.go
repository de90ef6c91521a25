package deck

import (
	"os"
	"strconv"

	"flashgo/schedule"
)

type Config struct {
	Schedule schedule.Config
}

// newConfig seeds the schedule choice from FLASHGO_POLICY,
// FLASHGO_SELECTOR and FLASHGO_SEED.
func newConfig() *Config {
	c := &Config{
		Schedule: schedule.Config{
			Policy:   os.Getenv("FLASHGO_POLICY"),
			Selector: os.Getenv("FLASHGO_SELECTOR"),
		},
	}
	if seed, err := strconv.ParseInt(os.Getenv("FLASHGO_SEED"), 10, 64); err == nil {
		c.Schedule.Seed = seed
	}
	return c
}
