// Package config loads and validates the vial-chat YAML configuration.
//
// # File Format
//
// The configuration is YAML with four sections:
//
//	store:
//	  backend: "sqlite"          # or "firestore"
//	  path: "./chat.db"          # sqlite only
//	  project_id: "my-project"   # firestore only
//	  credentials_file: "sa.json"
//	  collection: "ChatMessages"
//
//	responder:
//	  url: "http://localhost:5000/chat"
//	  timeout: "30s"
//
//	voice:
//	  locale: "es-ES"
//	  settle_delay: "300ms"
//
//	logging:
//	  level: "info"              # debug, info, warn, error
//	  format: "text"             # text or json
//
// # Environment Variables
//
// Values may reference environment variables with ${VAR_NAME} syntax;
// unset variables expand to the empty string.
//
// # Durations
//
// Duration fields are written as Go duration strings ("300ms", "30s")
// and parsed at load time.
package config
