// internal/web/ops.go
//
// Operator endpoints: the sanitized webmail contract, and a hook to force
// a cleanup sweep between ticks.
package web

import (
	"net/http"
)

// handleWebmailConfig exposes the frontend contract with the secrets
// (smtp_pass, des_key, DSN password) blanked, so dashboards can display
// the effective endpoints without leaking credentials.
func (a *API) handleWebmailConfig(w http.ResponseWriter, r *http.Request) {
	cfg := a.Webmail

	dsn := ""
	if d, err := cfg.ParseDSNW(); err == nil {
		d.Password = ""
		dsn = d.String()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"db_dsnw":   dsn,
		"imap_host": cfg.IMAP.Host,
		"imap_port": cfg.IMAP.Port,
		"imap_conn_options": map[string]bool{
			"verify_peer":       cfg.IMAP.ConnOptions.VerifyPeer,
			"verify_peer_name":  cfg.IMAP.ConnOptions.VerifyPeerName,
			"allow_self_signed": cfg.IMAP.ConnOptions.AllowSelfSigned,
		},
		"smtp_host": cfg.SMTP.Host,
		"smtp_port": cfg.SMTP.Port,
		"smtp_user": cfg.SMTP.User,
		"smtp_conn_options": map[string]bool{
			"verify_peer":       cfg.SMTP.ConnOptions.VerifyPeer,
			"verify_peer_name":  cfg.SMTP.ConnOptions.VerifyPeerName,
			"allow_self_signed": cfg.SMTP.ConnOptions.AllowSelfSigned,
		},
		"language":               cfg.Language,
		"skin":                   cfg.Skin,
		"mail_domain":            cfg.MailDomain,
		"support_url":            cfg.SupportURL,
		"plugins":                cfg.Plugins,
		"create_default_folders": cfg.CreateDefaultFolders,
	})
}

// handleOpsCleanup forces one cleanup pass outside the ticker.
func (a *API) handleOpsCleanup(w http.ResponseWriter, r *http.Request) {
	a.Cleaner.Sweep(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "swept"})
}
