package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	OpenSeaAPIKey   string
	EtherscanAPIKey string
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Collection
	ContractAddress   string
	AllowedCurrencies []string
	CurrencyDecimals  int
	EventLimit        int
	TxLimit           int

	// Distribution
	BandEdges []float64

	// Scheduling
	RefreshHours          int
	ShiftThresholdPercent float64

	// API
	APIPort int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		OpenSeaAPIKey:   envStr("OPENSEA_API_KEY", ""),
		EtherscanAPIKey: envStr("ETHERSCAN_API_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "NFTScope"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "nftscope"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Collection; default contract is the Bored Ape Kennel Club
		ContractAddress:   envStr("CONTRACT_ADDRESS", "0xba30E5F9Bb24caa003E9f2f0497Ad287FDF95623"),
		AllowedCurrencies: envList("ALLOWED_CURRENCIES", []string{"Ether", "Wrapped Ether"}),
		CurrencyDecimals:  envInt("CURRENCY_DECIMALS", 18),
		EventLimit:        envInt("EVENT_LIMIT", 300),
		TxLimit:           envInt("TX_LIMIT", 10000),

		// Distribution
		BandEdges: envFloats("BAND_EDGES", []float64{0, 10, 100, 1000, 10000, 100000, 1000000}),

		// Scheduling
		RefreshHours:          envInt("REFRESH_HOURS", 24),
		ShiftThresholdPercent: envFloat("SHIFT_THRESHOLD_PERCENT", 10),

		// API
		APIPort: envInt("API_PORT", 3001),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.ContractAddress == "" {
		errs = append(errs, "CONTRACT_ADDRESS is required")
	} else if !common.IsHexAddress(c.ContractAddress) {
		errs = append(errs, fmt.Sprintf("CONTRACT_ADDRESS %q is not a valid hex address", c.ContractAddress))
	}
	if len(c.AllowedCurrencies) == 0 {
		errs = append(errs, "ALLOWED_CURRENCIES must name at least one currency")
	}
	if c.CurrencyDecimals < 0 {
		errs = append(errs, "CURRENCY_DECIMALS must be non-negative")
	}
	if len(c.BandEdges) < 2 {
		errs = append(errs, "BAND_EDGES needs at least two boundaries")
	}
	for i := 1; i < len(c.BandEdges); i++ {
		if c.BandEdges[i] <= c.BandEdges[i-1] {
			errs = append(errs, "BAND_EDGES must be strictly ascending")
			break
		}
	}

	if c.OpenSeaAPIKey == "" {
		fmt.Println("[WARN] OPENSEA_API_KEY not set — OpenSea may reject unauthenticated requests")
	}
	if c.EtherscanAPIKey == "" {
		fmt.Println("[WARN] ETHERSCAN_API_KEY not set — Etherscan rate limits are much tighter without one")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Contract returns the tracked NFT contract as a parsed address.
// Call Validate first.
func (c *Config) Contract() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// CurrencySet returns the inclusion set as a lookup map.
func (c *Config) CurrencySet() map[string]bool {
	set := make(map[string]bool, len(c.AllowedCurrencies))
	for _, name := range c.AllowedCurrencies {
		set[name] = true
	}
	return set
}

func (c *Config) Print() {
	fmt.Println("=== NFT Sale Distribution Configuration ===")
	fmt.Printf("Contract: %s\n", truncAddr(c.ContractAddress))
	fmt.Printf("Currencies: %s\n", strings.Join(c.AllowedCurrencies, ", "))
	fmt.Printf("Currency decimals: %d\n", c.CurrencyDecimals)
	fmt.Println("--------------------------------------")
	fmt.Println("Fetch limits:")
	fmt.Printf("  OpenSea events: %d\n", c.EventLimit)
	fmt.Printf("  Etherscan transactions: %d\n", c.TxLimit)
	fmt.Println("--------------------------------------")
	fmt.Printf("Band edges (USD): %v\n", c.BandEdges)
	fmt.Printf("Refresh: every %d hours\n", c.RefreshHours)
	fmt.Printf("Shift threshold: %.1f%%\n", c.ShiftThresholdPercent)
	fmt.Println("--------------------------------------")
	fmt.Printf("OpenSea API: %s\n", boolLabel(c.OpenSeaAPIKey != "", "configured", "not set"))
	fmt.Printf("Etherscan API: %s\n", boolLabel(c.EtherscanAPIKey != "", "configured", "not set"))
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envFloats(key string, fallback []float64) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []float64
	for _, part := range strings.Split(v, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fallback
		}
		out = append(out, f)
	}
	return out
}

func truncAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10] + "..."
	}
	return addr
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
