package config

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Core paths and conventions
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/ncheditor.db"},
		{Key: "http_addr", Default: "127.0.0.1:8086", Comment: "Daemon health endpoint listen address; empty disables it"},
		{Key: "user", Default: 0, Comment: "User id used when --user is not given"},
		{Key: "output", Default: "plain", Comment: "Output mode for get/set: plain, json, yaml or pretty"},

		{Key: "log.level", Default: "info", Comment: "Log level: trace, debug, info, warn, error"},

		{Key: "ipc.max_txn_bytes", Default: 65536, Comment: "Byte budget of one IPC transaction; lists larger than this are chunked"},
		{Key: "ipc.warn_element_ratio", Default: 1.0, Comment: "Warn about list elements costing more than this fraction of max_txn_bytes (0-1]"},
		{Key: "ipc.inline_count_limit", Default: -1, Comment: "Max elements in the first chunk of a list reply; -1 is unbounded"},
		{Key: "ipc.max_pending_transfers", Default: 64, Comment: "Continuations the daemon keeps before evicting the oldest"},
	}
}
