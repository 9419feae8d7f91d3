// Package heartbeat periodically proves that the owner of a FID is still
// alive by renewing the check time of its instance record.
package heartbeat
