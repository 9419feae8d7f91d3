package instance

import (
	"net"
	"net/netip"
	"os"
	"os/user"
	"runtime"

	"github.com/google/uuid"
)

// Metadata describes the process that owns an instance record.
//
// It is informational only and is never used to decide ownership.
type Metadata struct {
	HostName       string
	HostAddress    string
	OSName         string
	OSVersion      string
	OSArch         string
	OSUser         string
	RuntimeName    string
	RuntimeVersion string
	RuntimeVendor  string
	WorkDir        string
	PID            int

	// BootID uniquely identifies this incarnation of the process, which
	// distinguishes a restarted process that happens to reuse a PID.
	BootID uuid.UUID
}

// bootID is generated once per process.
var bootID = uuid.New()

// Replaced in tests.
var (
	osHostname        = os.Hostname
	netInterfaceAddrs = net.InterfaceAddrs
)

// CurrentMetadata returns the metadata of the running process.
//
// Fields that can not be determined are left empty.
func CurrentMetadata() Metadata {
	md := Metadata{
		OSName:         runtime.GOOS,
		OSVersion:      osVersion(),
		OSArch:         runtime.GOARCH,
		RuntimeName:    "go",
		RuntimeVersion: runtime.Version(),
		RuntimeVendor:  runtime.Compiler,
		PID:            os.Getpid(),
		BootID:         bootID,
	}

	md.HostName, _ = osHostname()
	md.HostAddress = hostAddress(md.HostName)
	md.WorkDir, _ = os.Getwd()

	if u, err := user.Current(); err == nil {
		md.OSUser = u.Username
	} else {
		md.OSUser = os.Getenv("USER")
	}

	return md
}

// hostAddress returns the address at which this host is most likely reachable
// by its peers.
//
// It prefers a private (LAN) IPv4 address, then any other non-loopback
// address, then the first address the host name resolves to.
func hostAddress(hostName string) string {
	var fallback netip.Addr

	if addrs, err := netInterfaceAddrs(); err == nil {
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}

			ip, ok := netip.AddrFromSlice(ipnet.IP)
			if !ok {
				continue
			}

			ip = ip.Unmap()
			if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
				continue
			}

			if ip.Is4() && ip.IsPrivate() {
				return ip.String()
			}

			if !fallback.IsValid() {
				fallback = ip
			}
		}
	}

	if fallback.IsValid() {
		return fallback.String()
	}

	if hostName != "" {
		if addrs, err := net.LookupHost(hostName); err == nil && len(addrs) > 0 {
			return addrs[0]
		}
	}

	return ""
}
