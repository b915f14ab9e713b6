package apperr

import (
	"errors"
	"fmt"
)

// Erreurs de base du tunnel de commande. Aucune n'est fatale : chaque étape
// les traduit en redirection ou en message affiché à l'utilisateur.
var (
	ErrAuthRequired = errors.New("authentification requise")
	ErrPersistence  = errors.New("erreur de persistance")
	ErrNotFound     = errors.New("introuvable")
	ErrForbidden    = errors.New("accès refusé")
)

// ValidationError signale une saisie invalide (paiement, adresse, statut)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("champ %q invalide: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PreconditionError signale une étape atteinte sans son prérequis.
// RedirectTo contient l'étape vers laquelle renvoyer l'utilisateur.
type PreconditionError struct {
	Reason     string
	RedirectTo string
}

func (e *PreconditionError) Error() string {
	if e.RedirectTo == "" {
		return "prérequis manquant: " + e.Reason
	}
	return fmt.Sprintf("prérequis manquant: %s (redirection vers %s)", e.Reason, e.RedirectTo)
}

func NewPrecondition(reason, redirectTo string) *PreconditionError {
	return &PreconditionError{Reason: reason, RedirectTo: redirectTo}
}

// Persistence enveloppe une erreur du service distant
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}
