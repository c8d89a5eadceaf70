package config

const EnvPrefix = "CAREBILL"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "CAREBILL_APP_ENV"
	EnvAppPort = "CAREBILL_APP_PORT"

	EnvDBDSN  = "CAREBILL_DB_DSN"
	EnvDBHost = "CAREBILL_DB_HOST"
	EnvDBUser = "CAREBILL_DB_USER"
	EnvDBName = "CAREBILL_DB_NAME"

	EnvBillingDefaultTrialDays  = "CAREBILL_BILLING_DEFAULT_TRIAL_DAYS"
	EnvBillingCycleDays         = "CAREBILL_BILLING_CYCLE_DAYS"
	EnvBillingTaxRatePercent    = "CAREBILL_BILLING_TAX_RATE_PERCENT"
	EnvBillingMaxStaffPerDevice = "CAREBILL_BILLING_MAX_STAFF_PER_DEVICE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
