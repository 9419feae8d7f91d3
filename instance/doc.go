// Package instance defines the persisted record of a server instance that owns
// a node ID (FID), and the store contract used to acquire and renew it.
//
// There is one record per possible FID. A record is "live" while its check
// time is within the expiry window; an expired record may be overwritten by
// another process. Records are never deleted.
package instance
