package handlers

import (
	"log"
	"net/http"
	"time"

	"cedra_storefront/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// l'origine est déjà filtrée par CORS
		return true
	},
}

// CartWebSocket pousse le panier à chaque notification Redis "cart:<user_id>"
func (h *Handler) CartWebSocket(c *gin.Context) {
	userID := viewerOf(c).UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.deps.Carts.Subscribe(ctx, userID)
	defer pubsub.Close()
	// attend la confirmation de l'abonnement avant d'annoncer la connexion
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("❌ Abonnement panier impossible: %v", err)
		return
	}
	ch := pubsub.Channel()

	// lecture en arrière-plan pour détecter la fermeture côté client
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
		return
	}
	log.Printf("🔌 WebSocket panier ouvert pour %s", userID)

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != cache.CartUpdated && msg.Payload != cache.CartCleared {
				continue
			}
			store := h.userStore(userID)
			store.Load(ctx)
			current := store.Cart()
			payload := gin.H{"type": "cart_updated", "items": current.Items, "summary": store.Summary()}
			store.Close()

			if err := conn.WriteJSON(payload); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			log.Printf("🔌 WebSocket panier fermé pour %s", userID)
			return
		case <-ctx.Done():
			return
		}
	}
}
