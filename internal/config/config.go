package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/Veraticus/chargeback/internal/notify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// File mirrors the on-disk YAML layout. Values are raw; Load resolves them
// into a Config.
type File struct {
	Input   InputFile    `mapstructure:"input" yaml:"input"`
	Filter  FilterFile   `mapstructure:"filter" yaml:"filter"`
	Report  ReportFile   `mapstructure:"report" yaml:"report"`
	Logging LoggingFile  `mapstructure:"logging" yaml:"logging"`
	Notify  NotifyFile   `mapstructure:"notify" yaml:"notify"`
	Actions []ActionFile `mapstructure:"actions" yaml:"actions"`
	Rates   []RateFile   `mapstructure:"rates" yaml:"rates"`
}

// InputFile configures where the work-order export is found.
type InputFile struct {
	SearchDir string `mapstructure:"search_dir" yaml:"search_dir"`
	Pattern   string `mapstructure:"pattern" yaml:"pattern"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
}

// FilterFile configures the filter chain.
type FilterFile struct {
	ExcludedCustomer string `mapstructure:"excluded_customer" yaml:"excluded_customer"`
	ClosureCode      string `mapstructure:"closure_code" yaml:"closure_code"`
	Timezone         string `mapstructure:"timezone" yaml:"timezone"`
}

// ActionFile is one billable action.
type ActionFile struct {
	Description string `mapstructure:"description" yaml:"description"`
	RateKey     string `mapstructure:"rate_key" yaml:"rate_key,omitempty"`
}

// RateFile is one rate table entry. Amount may be "$39.15" or 39.15.
type RateFile struct {
	Description string `mapstructure:"description" yaml:"description"`
	Amount      string `mapstructure:"amount" yaml:"amount"`
}

// ReportFile configures the output workbook.
type ReportFile struct {
	OutputDir         string `mapstructure:"output_dir" yaml:"output_dir"`
	Sheet             string `mapstructure:"sheet" yaml:"sheet"`
	BillingYear       int    `mapstructure:"billing_year" yaml:"billing_year"`
	LabelBillingMonth bool   `mapstructure:"label_billing_month" yaml:"label_billing_month"`
}

// LoggingFile configures log output.
type LoggingFile struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Format   string `mapstructure:"format" yaml:"format"`
	ErrorLog string `mapstructure:"error_log" yaml:"error_log"`
}

// NotifyFile configures report delivery.
type NotifyFile struct {
	Subject  string     `mapstructure:"subject" yaml:"subject"`
	Body     string     `mapstructure:"body" yaml:"body"`
	Channels []string   `mapstructure:"channels" yaml:"channels"`
	Slack    SlackFile  `mapstructure:"slack" yaml:"slack"`
	Sheets   SheetsFile `mapstructure:"sheets" yaml:"sheets"`
	SMTP     SMTPFile   `mapstructure:"smtp" yaml:"smtp"`
}

// SMTPFile configures the email channel.
type SMTPFile struct {
	Host      string   `mapstructure:"host" yaml:"host"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password,omitempty"`
	From      string   `mapstructure:"from" yaml:"from"`
	TLSPolicy string   `mapstructure:"tls_policy" yaml:"tls_policy"`
	Timeout   string   `mapstructure:"timeout" yaml:"timeout"`
	To        []string `mapstructure:"to" yaml:"to"`
	Port      int      `mapstructure:"port" yaml:"port"`
}

// SlackFile configures the Slack channel.
type SlackFile struct {
	Token   string `mapstructure:"token" yaml:"token,omitempty"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

// SheetsFile configures the Google Sheets channel.
type SheetsFile struct {
	ClientID           string `mapstructure:"client_id" yaml:"client_id,omitempty"`
	ClientSecret       string `mapstructure:"client_secret" yaml:"client_secret,omitempty"`
	RefreshToken       string `mapstructure:"refresh_token" yaml:"refresh_token,omitempty"`
	ServiceAccountPath string `mapstructure:"service_account_path" yaml:"service_account_path,omitempty"`
	SpreadsheetID      string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
	SpreadsheetName    string `mapstructure:"spreadsheet_name" yaml:"spreadsheet_name"`
	TimeZone           string `mapstructure:"time_zone" yaml:"time_zone"`
	BatchSize          int    `mapstructure:"batch_size" yaml:"batch_size"`
	EnableFormatting   bool   `mapstructure:"enable_formatting" yaml:"enable_formatting"`
}

// Default billable actions and rates of the service catalogue.
var (
	defaultActions = []string{
		"Assign License - Copilot",
		"Create the user id- Generic",
		"Microsoft Office E1 to E3 License Assignment - Task",
		"Power BI Pro License Assignment - Task",
		"Microsoft Project Premium License Assignment - Task",
	}
	defaultRates = []RateFile{
		{Description: "Create the user id- Generic", Amount: "$39.15"},
		{Description: "Microsoft Office E1 to E3 License Assignment - Task", Amount: "$12.94"},
		{Description: "Power BI Pro License Assignment - Task", Amount: "$12.94"},
		{Description: "Microsoft Project Premium License Assignment - Task", Amount: "17.39"},
		{Description: "Assign License - Copilot", Amount: "$31.00"},
	}
)

// DefaultFile returns the configuration used when no file is present.
func DefaultFile() File {
	smtp := notify.DefaultSMTPConfig()
	sheets := notify.DefaultSheetsConfig()

	return File{
		Input: InputFile{
			SearchDir: "~/Downloads",
			Pattern:   "WO Report*.xlsx*",
			Sheet:     "WO Report",
		},
		Filter: FilterFile{
			ExcludedCustomer: "2122",
			ClosureCode:      "Request fulfilled successfully",
			Timezone:         "Local",
		},
		Actions: lo.Map(defaultActions, func(d string, _ int) ActionFile {
			return ActionFile{Description: d}
		}),
		Rates: append([]RateFile(nil), defaultRates...),
		Report: ReportFile{
			OutputDir: "~/Documents",
			Sheet:     "Chargeback",
		},
		Notify: NotifyFile{
			Channels: []string{},
			Subject:  "Chargeback Report for {{.Month}} {{.Year}}",
			Body:     "Please find the attached work order report.",
			SMTP: SMTPFile{
				Port:      smtp.Port,
				TLSPolicy: smtp.TLSPolicy,
				Timeout:   smtp.Timeout.String(),
			},
			Sheets: SheetsFile{
				SpreadsheetName:  sheets.SpreadsheetName,
				TimeZone:         sheets.TimeZone,
				BatchSize:        sheets.BatchSize,
				EnableFormatting: sheets.EnableFormatting,
			},
		},
		Logging: LoggingFile{
			Level:    "info",
			Format:   "console",
			ErrorLog: "~/Desktop/Logs/error_log.txt",
		},
	}
}

// SetDefaults registers every key of DefaultFile with v so that config files,
// environment variables and flags can override them individually.
func SetDefaults(v *viper.Viper) {
	d := DefaultFile()

	v.SetDefault("input.search_dir", d.Input.SearchDir)
	v.SetDefault("input.pattern", d.Input.Pattern)
	v.SetDefault("input.sheet", d.Input.Sheet)

	v.SetDefault("filter.excluded_customer", d.Filter.ExcludedCustomer)
	v.SetDefault("filter.closure_code", d.Filter.ClosureCode)
	v.SetDefault("filter.timezone", d.Filter.Timezone)

	v.SetDefault("actions", lo.Map(d.Actions, func(a ActionFile, _ int) map[string]any {
		return map[string]any{"description": a.Description, "rate_key": a.RateKey}
	}))
	v.SetDefault("rates", lo.Map(d.Rates, func(r RateFile, _ int) map[string]any {
		return map[string]any{"description": r.Description, "amount": r.Amount}
	}))

	v.SetDefault("report.output_dir", d.Report.OutputDir)
	v.SetDefault("report.sheet", d.Report.Sheet)
	v.SetDefault("report.billing_year", d.Report.BillingYear)
	v.SetDefault("report.label_billing_month", d.Report.LabelBillingMonth)

	v.SetDefault("notify.channels", d.Notify.Channels)
	v.SetDefault("notify.subject", d.Notify.Subject)
	v.SetDefault("notify.body", d.Notify.Body)
	v.SetDefault("notify.smtp.host", "")
	v.SetDefault("notify.smtp.port", d.Notify.SMTP.Port)
	v.SetDefault("notify.smtp.username", "")
	v.SetDefault("notify.smtp.password", "")
	v.SetDefault("notify.smtp.from", "")
	v.SetDefault("notify.smtp.to", []string{})
	v.SetDefault("notify.smtp.tls_policy", d.Notify.SMTP.TLSPolicy)
	v.SetDefault("notify.smtp.timeout", d.Notify.SMTP.Timeout)
	v.SetDefault("notify.slack.token", "")
	v.SetDefault("notify.slack.channel", "")
	v.SetDefault("notify.sheets.client_id", "")
	v.SetDefault("notify.sheets.client_secret", "")
	v.SetDefault("notify.sheets.refresh_token", "")
	v.SetDefault("notify.sheets.service_account_path", "")
	v.SetDefault("notify.sheets.spreadsheet_id", "")
	v.SetDefault("notify.sheets.spreadsheet_name", d.Notify.Sheets.SpreadsheetName)
	v.SetDefault("notify.sheets.time_zone", d.Notify.Sheets.TimeZone)
	v.SetDefault("notify.sheets.batch_size", d.Notify.Sheets.BatchSize)
	v.SetDefault("notify.sheets.enable_formatting", d.Notify.Sheets.EnableFormatting)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.error_log", d.Logging.ErrorLog)
}

// Config is the resolved configuration handed to the pipeline.
type Config struct {
	Location *time.Location
	Rates    model.RateTable
	Input    InputConfig
	Filter   FilterConfig
	Report   ReportConfig
	Logging  LoggingFile
	Notify   NotifyConfig
	Actions  []model.BillableAction
}

// InputConfig locates the work-order export.
type InputConfig struct {
	SearchDir string
	Pattern   string
	Sheet     string
}

// FilterConfig parameterizes the filter chain.
type FilterConfig struct {
	ExcludedCustomer string
	ClosureCode      string
}

// ReportConfig parameterizes the output workbook.
type ReportConfig struct {
	OutputDir         string
	Sheet             string
	BillingYear       int
	LabelBillingMonth bool
}

// NotifyConfig parameterizes report delivery.
type NotifyConfig struct {
	Subject  string
	Body     string
	Channels []string
	Slack    notify.SlackConfig
	Sheets   notify.SheetsConfig
	SMTP     notify.SMTPConfig
}

// Load reads v into a resolved Config. Rates are parsed and paths expanded
// here, once.
func Load(v *viper.Viper) (*Config, error) {
	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return Resolve(file)
}

// Resolve converts a raw File into a Config.
func Resolve(file File) (*Config, error) {
	rates, err := BuildRateTable(file.Rates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	actions, err := BuildActions(file.Actions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	smtpTimeout, err := parseTimeout(file.Notify.SMTP.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: notify.smtp.timeout: %v", common.ErrInvalidConfig, err)
	}

	loc, err := time.LoadLocation(file.Filter.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", common.ErrInvalidConfig, file.Filter.Timezone, err)
	}

	cfg := &Config{
		Input: InputConfig{
			SearchDir: ExpandPath(file.Input.SearchDir),
			Pattern:   file.Input.Pattern,
			Sheet:     file.Input.Sheet,
		},
		Filter: FilterConfig{
			ExcludedCustomer: file.Filter.ExcludedCustomer,
			ClosureCode:      file.Filter.ClosureCode,
		},
		Location: loc,
		Actions:  actions,
		Rates:    rates,
		Report: ReportConfig{
			OutputDir:         ExpandPath(file.Report.OutputDir),
			Sheet:             file.Report.Sheet,
			BillingYear:       file.Report.BillingYear,
			LabelBillingMonth: file.Report.LabelBillingMonth,
		},
		Notify: NotifyConfig{
			Channels: lo.Uniq(file.Notify.Channels),
			Subject:  file.Notify.Subject,
			Body:     file.Notify.Body,
			SMTP: notify.SMTPConfig{
				Host:      file.Notify.SMTP.Host,
				Port:      file.Notify.SMTP.Port,
				Username:  file.Notify.SMTP.Username,
				Password:  file.Notify.SMTP.Password,
				From:      file.Notify.SMTP.From,
				To:        file.Notify.SMTP.To,
				TLSPolicy: file.Notify.SMTP.TLSPolicy,
				Timeout:   smtpTimeout,
			},
			Slack: notify.SlackConfig{
				Token:   file.Notify.Slack.Token,
				Channel: file.Notify.Slack.Channel,
			},
			Sheets: notify.SheetsConfig{
				ClientID:           file.Notify.Sheets.ClientID,
				ClientSecret:       file.Notify.Sheets.ClientSecret,
				RefreshToken:       file.Notify.Sheets.RefreshToken,
				ServiceAccountPath: ExpandPath(file.Notify.Sheets.ServiceAccountPath),
				SpreadsheetID:      file.Notify.Sheets.SpreadsheetID,
				SpreadsheetName:    file.Notify.Sheets.SpreadsheetName,
				TimeZone:           file.Notify.Sheets.TimeZone,
				BatchSize:          file.Notify.Sheets.BatchSize,
				EnableFormatting:   file.Notify.Sheets.EnableFormatting,
			},
		},
		Logging: LoggingFile{
			Level:    file.Logging.Level,
			Format:   file.Logging.Format,
			ErrorLog: ExpandPath(file.Logging.ErrorLog),
		},
	}

	applyEnvFallbacks(&cfg.Notify)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if len(c.Actions) == 0 {
		return fmt.Errorf("%w: at least one billable action is required", common.ErrMissingConfig)
	}
	if c.Input.Sheet == "" {
		return fmt.Errorf("%w: input sheet name is required", common.ErrMissingConfig)
	}
	if c.Filter.ClosureCode == "" {
		return fmt.Errorf("%w: closure code is required", common.ErrMissingConfig)
	}
	if c.Report.OutputDir == "" {
		return fmt.Errorf("%w: report output directory is required", common.ErrMissingConfig)
	}
	if c.Report.BillingYear < 0 {
		return fmt.Errorf("%w: billing year cannot be negative", common.ErrInvalidConfig)
	}

	for _, ch := range c.Notify.Channels {
		var err error
		switch ch {
		case notify.ChannelSMTP:
			err = c.Notify.SMTP.Validate()
		case notify.ChannelSlack:
			err = c.Notify.Slack.Validate()
		case notify.ChannelSheets:
			err = c.Notify.Sheets.Validate()
		default:
			err = fmt.Errorf("unknown notification channel %q (known: %v)", ch, notify.KnownChannels)
		}
		if err != nil {
			return fmt.Errorf("%w: notify.%s: %v", common.ErrInvalidConfig, ch, err)
		}
	}

	return nil
}

// MissingRates returns the rate keys of configured actions that have no rate.
// Rows for those actions are skipped at extraction time.
func (c *Config) MissingRates() []string {
	var missing []string
	for _, a := range c.Actions {
		if _, ok := c.Rates.Lookup(a.RateKey); !ok {
			missing = append(missing, a.RateKey)
		}
	}
	return lo.Uniq(missing)
}

func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
