package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cedra_storefront/internal/orders"
	"cedra_storefront/internal/pricing"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port           string
	JWTSecret      []byte
	RedisAddr      string
	RedisPassword  string
	AllowedOrigins []string
	PollInterval   time.Duration
	Rates          pricing.Rates
}

// Load lit .env s'il existe puis l'environnement du système
func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

func FromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("⚠️ JWT_SECRET manquant, secret de développement utilisé")
		secret = "super_secret"
	}

	return Config{
		Port:           getenv("PORT", "8080"),
		JWTSecret:      []byte(secret),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		PollInterval:   duration("ORDERS_POLL_INTERVAL", orders.DefaultPollInterval),
		Rates:          Rates(),
	}
}

// Rates part des tarifs par défaut ; chaque montant peut être surchargé
func Rates() pricing.Rates {
	r := pricing.DefaultRates()
	r.Cart.FreeShippingThreshold = amount("CART_FREE_SHIPPING_THRESHOLD", r.Cart.FreeShippingThreshold)
	r.Cart.FlatFee = amount("CART_DELIVERY_FEE", r.Cart.FlatFee)
	r.Package.FreeShippingThreshold = amount("PACKAGE_FREE_SHIPPING_THRESHOLD", r.Package.FreeShippingThreshold)
	r.Package.FlatFee = amount("PACKAGE_DELIVERY_FEE", r.Package.FlatFee)
	r.PlatformFeePerPackage = amount("PLATFORM_FEE_PER_PACKAGE", r.PlatformFeePerPackage)
	r.PlatformFeeMinimum = amount("PLATFORM_FEE_MINIMUM", r.PlatformFeeMinimum)
	return r
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func amount(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %s", key, raw, fallback)
		return fallback
	}
	return d
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️ %s invalide (%q), valeur par défaut %s", key, raw, fallback)
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
