package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string
		WorkDir          string
		Server           ServerConfig
		Database         DatabaseConfig
		Calendar         CalendarConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		DisableReqLogs            bool
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		// InMemory swaps PostgreSQL for the in-memory repositories (DEV only; data is lost on restart).
		InMemory      bool
	}

	// CalendarConfig drives the calendar views: visible hours, lane gap and
	// the time zone used to interpret zoneless timestamps.
	CalendarConfig struct {
		Location         *time.Location
		DayStartHour     float64
		DayEndHour       float64
		MinDurationHours float64
		LaneGapPercent   float64
		WeekStart        time.Weekday
		ShowAdjacentDays bool
		EDEmail          string
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

// NewConfig loads the config from viper defaults, overridden by `<ENV>_*` environment variables.
// `config/.env.<env>` is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Dashboard")
	v.SetDefault("secretKey", "xk7#q!2v0z$c9m@w4n8r(t3y)e6u1i5o=p&a-s+d*f^g%h")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Dashboard <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "dashboard")
	v.SetDefault("database.user", "dashboard")
	v.SetDefault("database.password", "dashboard")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.inMemory", false)

	v.SetDefault("calendar.timezone", "Asia/Kolkata")
	v.SetDefault("calendar.dayStartHour", 6.0)
	v.SetDefault("calendar.dayEndHour", 22.0)
	v.SetDefault("calendar.minDurationHours", 0.5)
	v.SetDefault("calendar.laneGapPercent", 1.0)
	v.SetDefault("calendar.weekStart", "sunday")
	v.SetDefault("calendar.showAdjacentDays", false)
	v.SetDefault("calendar.edEmail", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("testMode", env == "TEST")
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return newConfigFromViper(v, env, workDir)
}

func newConfigFromViper(v *viper.Viper, env, workDir string) *Config {
	fromEmail, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	loc, err := time.LoadLocation(v.GetString("calendar.timezone"))
	if err != nil {
		log.Fatalf("config.calendar.timezone: %v", err)
	}

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: *fromEmail,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		WorkDir:          workDir,
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			InMemory:      v.GetBool("database.inMemory"),
		},
		Calendar: CalendarConfig{
			Location:         loc,
			DayStartHour:     v.GetFloat64("calendar.dayStartHour"),
			DayEndHour:       v.GetFloat64("calendar.dayEndHour"),
			MinDurationHours: v.GetFloat64("calendar.minDurationHours"),
			LaneGapPercent:   v.GetFloat64("calendar.laneGapPercent"),
			WeekStart:        ParseWeekday(v.GetString("calendar.weekStart")),
			ShowAdjacentDays: v.GetBool("calendar.showAdjacentDays"),
			EDEmail:          v.GetString("calendar.edEmail"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no .env file, no env variables.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetDefault("debug", false)
	v.SetDefault("testMode", true)
	v.SetDefault("appName", "Dashboard")
	v.SetDefault("secretKey", "secret")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("server.disableReqLogs", true)
	v.SetDefault("server.jwtExpirationDelta", 10*time.Minute)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("calendar.timezone", "UTC")
	v.SetDefault("calendar.dayStartHour", 6.0)
	v.SetDefault("calendar.dayEndHour", 22.0)
	v.SetDefault("calendar.minDurationHours", 0.5)
	v.SetDefault("calendar.laneGapPercent", 1.0)
	v.SetDefault("calendar.weekStart", "sunday")
	v.SetDefault("calendar.edEmail", "ed@test.in")
	v.SetDefault("database.inMemory", true)
	return newConfigFromViper(v, "TEST", "")
}

// ParseWeekday parses an english weekday name; unknown names default to Sunday.
func ParseWeekday(s string) time.Weekday {
	s = CleanString(s, true /* lower */)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d
		}
	}
	return time.Sunday
}
