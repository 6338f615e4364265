// Package securestore is the on-device key/value store behind the session
// layer. Values are sealed with cryptox before they are written to the
// secure_store table and opened on read, so the database file never holds
// tokens in clear text.
//
// The sealing key is derived once per process by InstallKey from a device
// secret and a random salt generated on first use and kept in the install
// table. Losing either makes previously stored values unreadable; callers
// treat that as "nothing stored".
package securestore
