package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gocql/gocql"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

// ScyllaManager garde une session par keyspace
type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
}

// Keyspaces utilisés par le tunnel de commande
const (
	KeyspaceUsers  = "users"
	KeyspaceOrders = "orders"
)

// NewScyllaManager ouvre une session pour chaque keyspace configuré
func NewScyllaManager(configs map[string]ScyllaKeyspaceConfig) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  configs,
	}

	for name := range sm.configs {
		if _, err := sm.Session(name); err != nil {
			sm.Close()
			return nil, fmt.Errorf("échec initialisation keyspace %s: %w", name, err)
		}
	}

	// Note: Les tables doivent être créées via scripts/scylladb_init.cql
	return sm, nil
}

// LoadScyllaConfigs charge les configurations depuis l'environnement.
// Les clés de la map sont KeyspaceUsers / KeyspaceOrders.
func LoadScyllaConfigs() map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	// Configuration commune
	hosts := splitHosts(os.Getenv("SCYLLA_HOSTS"))
	sslEnabled := strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true"
	caPath := os.Getenv("SCYLLA_SSL_CA_PATH")

	add := func(name, prefix string) {
		ks := os.Getenv(prefix + "_KEYSPACE")
		if ks == "" {
			return
		}
		configs[name] = ScyllaKeyspaceConfig{
			Hosts:       hosts,
			Keyspace:    ks,
			Username:    os.Getenv(prefix + "_ROLE"),
			Password:    os.Getenv(prefix + "_PASSWORD"),
			SSLEnabled:  sslEnabled,
			CACertPath:  caPath,
			Timeout:     5 * time.Second,
			NumConns:    20,
			Consistency: gocql.Quorum,
		}
	}

	add(KeyspaceUsers, "SCYLLA_KS_USERS")
	add(KeyspaceOrders, "SCYLLA_KS_ORDERS")

	return configs
}

func splitHosts(raw string) []string {
	hosts := []string{}
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// createScyllaCluster crée une configuration de cluster pour un keyspace
func createScyllaCluster(config ScyllaKeyspaceConfig) (*gocql.ClusterConfig, error) {
	if len(config.Hosts) == 0 {
		return nil, fmt.Errorf("SCYLLA_HOSTS non configuré")
	}

	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns

	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	if config.SSLEnabled {
		if config.CACertPath == "" {
			return nil, fmt.Errorf("SCYLLA_SSL_CA_PATH requis quand SSL est activé")
		}
		if _, err := os.Stat(config.CACertPath); err != nil {
			return nil, fmt.Errorf("impossible de lire le certificat CA: %w", err)
		}
		cluster.SslOpts = &gocql.SslOptions{CaPath: config.CACertPath}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	return cluster, nil
}

// Session retourne la session d'un keyspace, recréée si elle ne répond plus
func (sm *ScyllaManager) Session(name string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[name]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", name)
	}

	if session, exists := sm.sessions[name]; exists {
		if !session.Closed() {
			return session, nil
		}
		delete(sm.sessions, name)
	}

	cluster, err := createScyllaCluster(config)
	if err != nil {
		return nil, fmt.Errorf("erreur configuration cluster pour %s: %w", config.Keyspace, err)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", config.Keyspace, err)
	}

	sm.sessions[name] = session
	log.Printf("✅ Nouvelle session ScyllaDB pour keyspace '%s' (utilisateur: %s)", config.Keyspace, config.Username)

	return session, nil
}

// Close ferme toutes les sessions ScyllaDB
func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for name, session := range sm.sessions {
		session.Close()
		log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", name)
	}
	sm.sessions = make(map[string]*gocql.Session)
}
