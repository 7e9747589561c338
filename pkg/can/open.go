package can

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// OpenFunc opens a Bus from a parsed URL.
type OpenFunc func(u *url.URL) (Bus, error)

var (
	registry     = map[string]OpenFunc{"mem": openMem}
	registryLock sync.RWMutex

	memHubs     = make(map[string]*Hub)
	memHubsLock sync.Mutex
)

// Register makes a transport available under a URL scheme.
// It is intended to be called from init funcs of transport packages.
func Register(scheme string, fn OpenFunc) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[scheme] = fn
}

// Schemes lists registered URL schemes.
func Schemes() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	schemes := make([]string, 0, len(registry))
	for scheme := range registry {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Open opens a Bus by URL, e.g. mem://table, mqtt://host:1883/canpong/,
// udp://239.0.0.42:7420?iface=eth0, tcp://host:7421, can://can0.
func Open(busURL string) (Bus, error) {
	u, err := url.Parse(busURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bus URL: %v", err)
	}
	registryLock.RLock()
	fn := registry[u.Scheme]
	registryLock.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("unknown bus URL scheme: %q", u.Scheme)
	}
	return fn(u)
}

// MemHub returns the process-wide Hub with the given name, creating it.
func MemHub(name string) *Hub {
	memHubsLock.Lock()
	defer memHubsLock.Unlock()
	h := memHubs[name]
	if h == nil {
		h = NewHub()
		memHubs[name] = h
	}
	return h
}

func openMem(u *url.URL) (Bus, error) {
	name := u.Host
	if name == "" {
		name = "default"
	}
	node := u.Query().Get("node")
	if node == "" {
		node = fmt.Sprintf("node-%p", u)
	}
	return MemHub(name).Attach(node), nil
}
