package database

// Requêtes CQL des dépôts. Les schémas correspondants sont dans
// scripts/scylladb_init.cql.
const (
	// --- Commandes ---
	stmtInsertOrder = `INSERT INTO orders (order_id, user_id, status, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	stmtInsertOrderByUser = `INSERT INTO orders_by_user (user_id, order_id, status, created_at)
		VALUES (?, ?, ?, ?)`
	stmtInsertOrderBySeller = `INSERT INTO orders_by_seller (seller, order_id, created_at)
		VALUES (?, ?, ?)`
	stmtGetOrder            = `SELECT payload, status, updated_at FROM orders WHERE order_id = ?`
	stmtListOrders          = `SELECT payload, status, updated_at FROM orders`
	stmtListOrderIDByUser   = `SELECT order_id FROM orders_by_user WHERE user_id = ?`
	stmtListOrderIDBySeller = `SELECT order_id FROM orders_by_seller WHERE seller = ?`
	stmtUpdateOrderStatus   = `UPDATE orders SET status = ?, payload = ?, updated_at = ? WHERE order_id = ?`
	stmtUpdateOrderByUser   = `UPDATE orders_by_user SET status = ? WHERE user_id = ? AND order_id = ?`

	// --- Carnet d'adresses ---
	stmtInsertAddress = `INSERT INTO shipping_addresses (user_id, address_id, title, name, mobile, address, city_state, postal_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmtListAddresses = `SELECT address_id, title, name, mobile, address, city_state, postal_code, created_at
		FROM shipping_addresses WHERE user_id = ?`
)
