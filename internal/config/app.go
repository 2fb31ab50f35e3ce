package config

// AppConfig — настройки ядра, не относящиеся к БД.
type AppConfig struct {
	HTTPAddr string

	// Рабочее окно площадки, "HH:MM".
	OpeningTime string
	ClosingTime string

	// Таймаут одного обращения к хранилищу, секунд.
	StoreTimeoutSec int

	// Повторы верифицируемых записей: количество попыток и базовая
	// задержка (удвоение на каждой следующей).
	RetryAttempts    int
	RetryBaseDelayMs int
	SweepIntervalSec int
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		HTTPAddr:         getEnv("CORE_HTTP_ADDR", ":8080"),
		OpeningTime:      getEnv("FACILITY_OPENING_TIME", "09:00"),
		ClosingTime:      getEnv("FACILITY_CLOSING_TIME", "19:00"),
		StoreTimeoutSec:  getEnvInt("STORE_TIMEOUT_SEC", 5),
		RetryAttempts:    getEnvInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelayMs: getEnvInt("RETRY_BASE_DELAY_MS", 1000),
		SweepIntervalSec: getEnvInt("SWEEP_INTERVAL_SEC", 30),
	}
}
