// Package i18n holds the en/fr message catalog used by templates and flash
// messages. Keys are the error and violation codes produced elsewhere.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "fr"

var catalog = map[string]map[string]string{
	"fr": {
		"required":               "Requis",
		"must_be_positive":       "Doit être positif",
		"out_of_range":           "Hors limites",
		"invalid_choice":         "Choix invalide",
		"invalid_email":          "Email invalide",
		"url":                    "URL invalide",
		"email_taken":            "Cet email est déjà utilisé",
		"bad_credentials":        "Email ou mot de passe invalide",
		"db_error":               "Erreur de base de données, réessayez",
		"internal_error":         "Erreur interne",
		"invalid_id":             "Identifiant invalide",
		"invalid_form":           "Formulaire invalide",
		"invalid_json":           "JSON invalide",
		"validation_failed":      "Formulaire incomplet",
		"not_found":              "Introuvable",
		"forbidden":              "Accès refusé",
		"unauthorized":           "Connexion requise",
		"empty_message":          "Le message est vide",
		"message_too_long":       "Le message est trop long",
		"invalid_client_id":      "Identifiant de message invalide",
		"receiver_required":      "Choisissez un destinataire",
		"client_id_conflict":     "Identifiant de message déjà utilisé",
		"invalid_status":         "Statut invalide",
		"listing_approved":       "Annonce approuvée",
		"listing_rejected":       "Annonce supprimée",
		"review_approved":        "Avis approuvé",
		"review_rejected":        "Avis supprimé",
		"agent_approved":         "Agent vérifié",
		"agent_rejected":         "Agent supprimé",
		"not_agent":              "Ce profil n'est pas un agent",
		"review_submitted":       "Avis envoyé, en attente de modération",
		"visit_scheduled":        "Visite planifiée",
		"interest_sent":          "Demande envoyée à l'agent",
		"favorite_added":         "Ajouté aux favoris",
		"favorite_removed":       "Retiré des favoris",
		"lead_updated":           "Statut du contact mis à jour",
		"listing_saved":          "Annonce enregistrée, en attente d'approbation",
		"listing_deleted":        "Annonce supprimée",
		"profile_saved":          "Profil enregistré",
		"status.available":       "Disponible",
		"status.pending":         "En attente",
		"status.under_contract":  "Sous compromis",
		"status.sold":            "Vendu",
		"lead.new":               "Nouveau",
		"lead.contacted":         "Contacté",
		"lead.viewing":           "Visite",
		"lead.offer":             "Offre",
		"lead.closed":            "Clôturé",
		"role.customer":          "Client",
		"role.agent":             "Agent",
		"role.admin":             "Administrateur",
		"nav.search":             "Rechercher",
		"nav.dashboard":          "Tableau de bord",
		"nav.login":              "Connexion",
		"nav.signup":             "Inscription",
		"nav.logout":             "Déconnexion",
		"nav.listings":           "Mes annonces",
		"nav.leads":              "Contacts",
		"nav.visits":             "Visites",
		"nav.favorites":          "Favoris",
		"nav.profile":            "Profil",
		"nav.moderation":         "Modération",
		"nav.agents":             "Agents",
		"nav.reviews":            "Avis",
		"nav.users":              "Utilisateurs",
		"nav.permissions":        "Permissions",
		"action.approve":         "Approuver",
		"action.reject":          "Rejeter",
		"action.save":            "Enregistrer",
		"action.delete":          "Supprimer",
		"action.send":            "Envoyer",
		"action.edit":            "Modifier",
		"action.new_listing":     "Nouvelle annonce",
		"label.pending_approval": "En attente d'approbation",
		"label.unverified":       "Non vérifié",
		"label.verified":         "Vérifié",
		"label.empty":            "Rien à afficher",
		"label.total":            "Total",
		"label.joined":           "Inscrit le",
	},
	"en": {
		"required":               "Required",
		"must_be_positive":       "Must be positive",
		"out_of_range":           "Out of range",
		"invalid_choice":         "Invalid choice",
		"invalid_email":          "Invalid email",
		"url":                    "Invalid URL",
		"email_taken":            "Email already in use",
		"bad_credentials":        "Invalid email or password",
		"db_error":               "Database error, please retry",
		"internal_error":         "Internal error",
		"invalid_id":             "Invalid id",
		"invalid_form":           "Invalid form",
		"invalid_json":           "Invalid JSON",
		"validation_failed":      "Please fix the form",
		"not_found":              "Not found",
		"forbidden":              "Forbidden",
		"unauthorized":           "Sign in required",
		"empty_message":          "Message is empty",
		"message_too_long":       "Message is too long",
		"invalid_client_id":      "Invalid message id",
		"receiver_required":      "Pick a recipient",
		"client_id_conflict":     "Message id already in use",
		"invalid_status":         "Invalid status",
		"listing_approved":       "Listing approved",
		"listing_rejected":       "Listing removed",
		"review_approved":        "Review approved",
		"review_rejected":        "Review removed",
		"agent_approved":         "Agent verified",
		"agent_rejected":         "Agent removed",
		"not_agent":              "This profile is not an agent",
		"review_submitted":       "Review submitted, awaiting moderation",
		"visit_scheduled":        "Visit scheduled",
		"interest_sent":          "Your request was sent to the agent",
		"favorite_added":         "Added to favorites",
		"favorite_removed":       "Removed from favorites",
		"lead_updated":           "Lead status updated",
		"listing_saved":          "Listing saved, awaiting approval",
		"listing_deleted":        "Listing deleted",
		"profile_saved":          "Profile saved",
		"status.available":       "Available",
		"status.pending":         "Pending",
		"status.under_contract":  "Under contract",
		"status.sold":            "Sold",
		"lead.new":               "New",
		"lead.contacted":         "Contacted",
		"lead.viewing":           "Viewing",
		"lead.offer":             "Offer",
		"lead.closed":            "Closed",
		"role.customer":          "Customer",
		"role.agent":             "Agent",
		"role.admin":             "Administrator",
		"nav.search":             "Search",
		"nav.dashboard":          "Dashboard",
		"nav.login":              "Sign in",
		"nav.signup":             "Sign up",
		"nav.logout":             "Sign out",
		"nav.listings":           "My listings",
		"nav.leads":              "Leads",
		"nav.visits":             "Visits",
		"nav.favorites":          "Favorites",
		"nav.profile":            "Profile",
		"nav.moderation":         "Moderation",
		"nav.agents":             "Agents",
		"nav.reviews":            "Reviews",
		"nav.users":              "Users",
		"nav.permissions":        "Permissions",
		"action.approve":         "Approve",
		"action.reject":          "Reject",
		"action.save":            "Save",
		"action.delete":          "Delete",
		"action.send":            "Send",
		"action.edit":            "Edit",
		"action.new_listing":     "New listing",
		"label.pending_approval": "Awaiting approval",
		"label.unverified":       "Unverified",
		"label.verified":         "Verified",
		"label.empty":            "Nothing to show",
		"label.total":            "Total",
		"label.joined":           "Joined",
	},
}

// T translates code into lang, falling back to French and then to the code.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Has reports whether code is in the catalog.
func Has(code string) bool {
	_, ok := catalog[DefaultLang][code]
	return ok
}

// DetectLanguage picks "en" or "fr" from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := catalog[base]; ok {
			return base
		}
	}
	return DefaultLang
}

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the stored language, or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// Normalize returns lang when the catalog has it, or DefaultLang.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := catalog[lang]; ok {
		return lang
	}
	return DefaultLang
}
