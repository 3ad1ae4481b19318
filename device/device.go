package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/qubera-team/qubera-client/common"
	"github.com/qubera-team/qubera-client/core"
	"go.uber.org/zap"
)

const catalogFetchTimeout = 30 * time.Second

// DeviceSetting is the local overlay on the remote catalog. The service owns
// the capability sheets; this file only pins a default device, caps shots
// below the advertised maximum and hides devices from selection.
type DeviceSetting struct {
	DefaultDeviceID string   `toml:"default_device_id"`
	CacheTTLSeconds int      `toml:"cache_ttl"`
	MaxShotsCap     int      `toml:"max_shots_cap"`
	Deny            []string `toml:"deny"`
}

func NewDeviceSetting() *DeviceSetting {
	return &DeviceSetting{
		CacheTTLSeconds: 300,
	}
}

func LoadDeviceSetting(path string) (*DeviceSetting, error) {
	ds := NewDeviceSetting()
	blob, readErr := common.ReadFile(path)
	if readErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, readErr))
		return ds, nil
	}
	if _, err := toml.Decode(blob, ds); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &DeviceSetting{}, err
	}
	return ds, nil
}

func (ds *DeviceSetting) denied(deviceID string) bool {
	for _, d := range ds.Deny {
		if d == deviceID {
			return true
		}
	}
	return false
}

// Catalog caches the remote device list for a TTL so every submission does
// not round-trip the catalog endpoint.
type Catalog struct {
	client  core.QuantumClient
	setting *DeviceSetting
	ttl     time.Duration

	mu        sync.RWMutex
	cache     map[string]*core.DeviceInfo
	fetchedAt time.Time
}

func NewCatalog(client core.QuantumClient) *Catalog {
	return &Catalog{
		client:  client,
		setting: NewDeviceSetting(),
		cache:   map[string]*core.DeviceInfo{},
	}
}

func (c *Catalog) Setup(conf *core.Conf) error {
	if conf.DeviceSettingPath != "" {
		ds, err := LoadDeviceSetting(conf.DeviceSettingPath)
		if err != nil {
			return err
		}
		c.setting = ds
	}
	ttlSeconds := c.setting.CacheTTLSeconds
	if conf.DeviceCacheTTL > 0 {
		ttlSeconds = conf.DeviceCacheTTL
	}
	c.ttl = time.Duration(ttlSeconds) * time.Second
	zap.L().Debug(fmt.Sprintf("device catalog is set up/ttl:%s/default device:%s",
		c.ttl, c.setting.DefaultDeviceID))
	return nil
}

// DefaultDeviceID returns the device pinned in the setting file, if any.
func (c *Catalog) DefaultDeviceID() string {
	return c.setting.DefaultDeviceID
}

func (c *Catalog) Resolve(deviceID string) (*core.DeviceInfo, error) {
	if deviceID == "" {
		deviceID = c.DefaultDeviceID()
	}
	if deviceID == "" {
		return nil, fmt.Errorf("no device is specified and no default device is set")
	}
	if c.setting.denied(deviceID) {
		return nil, fmt.Errorf("device %s is denied by the device setting", deviceID)
	}
	if di, ok := c.lookup(deviceID); ok {
		return di, nil
	}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	if di, ok := c.lookup(deviceID); ok {
		return di, nil
	}

	// Not in the search results. Some devices are only visible by direct
	// lookup, so fall back to the single-device endpoint.
	ctx, cancel := context.WithTimeout(context.Background(), catalogFetchTimeout)
	defer cancel()
	di, err := c.client.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device %s/reason:%s", deviceID, err)
	}
	c.apply(di)
	c.mu.Lock()
	c.cache[di.DeviceID] = di
	c.mu.Unlock()
	return di, nil
}

func (c *Catalog) List() ([]*core.DeviceInfo, error) {
	c.mu.RLock()
	stale := time.Since(c.fetchedAt) > c.ttl
	c.mu.RUnlock()
	if stale {
		if err := c.Refresh(); err != nil {
			return nil, err
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	devices := make([]*core.DeviceInfo, 0, len(c.cache))
	for _, di := range c.cache {
		devices = append(devices, di)
	}
	return devices, nil
}

func (c *Catalog) Refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), catalogFetchTimeout)
	defer cancel()
	devices, err := c.client.SearchDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh the device catalog/reason:%s", err)
	}
	cache := make(map[string]*core.DeviceInfo, len(devices))
	for _, di := range devices {
		if c.setting.denied(di.DeviceID) {
			continue
		}
		c.apply(di)
		cache[di.DeviceID] = di
	}
	c.mu.Lock()
	c.cache = cache
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	zap.L().Debug(fmt.Sprintf("refreshed the device catalog/devices:%d", len(cache)))
	return nil
}

func (c *Catalog) lookup(deviceID string) (*core.DeviceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	di, ok := c.cache[deviceID]
	return di, ok
}

func (c *Catalog) apply(di *core.DeviceInfo) {
	if c.setting.MaxShotsCap > 0 && di.MaxShots > c.setting.MaxShotsCap {
		di.MaxShots = c.setting.MaxShotsCap
	}
}
