package utils

import (
	"fmt"
	"html"
	"strings"

	"cedra_storefront/internal/models"
	"cedra_storefront/internal/pricing"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, `
			<tr>
				<td>%s</td>
				<td>%s</td>
				<td>%d</td>
				<td>₹%s</td>
			</tr>`, html.EscapeString(item.Name), html.EscapeString(item.Seller), item.Quantity, pricing.Format(item.LineTotal))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Commande #%s confirmée</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande a été enregistrée (%d colis). Paiement : %s.</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th>Produit</th>
					<th>Vendeur</th>
					<th>Quantité</th>
					<th>Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr><td colspan="3" style="text-align: right;">Sous-total :</td><td>₹%s</td></tr>
				<tr><td colspan="3" style="text-align: right;">Livraison :</td><td>₹%s</td></tr>
				<tr><td colspan="3" style="text-align: right;">Frais de plateforme :</td><td>₹%s</td></tr>
				<tr><td colspan="3" style="text-align: right; font-weight: bold;">Total :</td><td style="font-weight: bold;">₹%s</td></tr>
			</tfoot>
		</table>
		<p>Livraison à : %s, %s %s</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Cedra</strong>
		</p>
	</div>
</body>
</html>`,
		shortID(order.ID),
		html.EscapeString(order.Address.Name),
		len(order.Packages),
		html.EscapeString(order.Payment.Name),
		rows.String(),
		pricing.Format(order.Subtotal),
		pricing.Format(order.DeliveryTotal),
		pricing.Format(order.PlatformFee),
		pricing.Format(order.GrandTotal),
		html.EscapeString(order.Address.Address),
		html.EscapeString(order.Address.CityState),
		html.EscapeString(order.Address.PostalCode),
	)
}

func statusEmailSubject(status models.OrderStatus) string {
	return fmt.Sprintf("%s %s - Cedra", statusIcon(status), status)
}

func generateStatusEmailHTML(order models.Order) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Mise à jour de commande</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; padding: 30px;">
		<h1 style="margin: 0; color: #333333;">%s Cedra</h1>
		<div style="display: inline-block; margin: 20px 0; padding: 12px 24px; background-color: %s; color: #ffffff; border-radius: 25px; font-weight: 600;">
			%s
		</div>
		<p style="color: #333333; font-size: 16px; line-height: 1.6;">%s</p>
		<p><strong>Numéro de commande :</strong> #%s</p>
		<p><strong>Montant total :</strong> ₹%s</p>
		<p style="color: #999999; font-size: 12px;">Cet email a été envoyé automatiquement, merci de ne pas y répondre.</p>
	</div>
</body>
</html>
`, statusIcon(order.Status), statusColor(order.Status), order.Status, statusMessage(order.Status), shortID(order.ID), pricing.Format(order.GrandTotal))
}

func statusMessage(status models.OrderStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "Votre commande est confirmée. Nous la transmettons aux vendeurs."
	case models.StatusProcessing:
		return "Les vendeurs préparent vos articles."
	case models.StatusPacked:
		return "Vos colis sont emballés et prêts à partir."
	case models.StatusHandedCourier:
		return "Vos colis ont été remis au transporteur."
	case models.StatusInTransit:
		return "Bonne nouvelle ! Votre commande est en route vers vous."
	case models.StatusDelivered:
		return "Votre commande a été livrée. Nous espérons que vous en êtes satisfait !"
	case models.StatusCancelled:
		return "Votre commande a été annulée. Si vous avez des questions, n'hésitez pas à nous contacter."
	case models.StatusReturned:
		return "Votre retour a été enregistré. Le remboursement suivra sous 5 à 10 jours ouvrés."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}

func statusIcon(status models.OrderStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "✅"
	case models.StatusPacked, models.StatusHandedCourier, models.StatusInTransit:
		return "📦"
	case models.StatusDelivered:
		return "🎉"
	case models.StatusCancelled:
		return "❌"
	case models.StatusReturned:
		return "💰"
	default:
		return "📋"
	}
}

func statusColor(status models.OrderStatus) string {
	switch status {
	case models.StatusDelivered, models.StatusConfirmed:
		return "#10b981"
	case models.StatusCancelled, models.StatusReturned:
		return "#ef4444"
	default:
		return "#667eea"
	}
}
