package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitGeoIP_EmptyPath(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")
	assert.NoError(t, InitGeoIP(""))
}

func TestInitGeoIP_NonExistentFile(t *testing.T) {
	assert.Error(t, InitGeoIP("/nonexistent/path/to/geoip.mmdb"))
}

func TestGetIPLocation_SkipsLocalAddresses(t *testing.T) {
	for _, ip := range []string{"", "not-an-ip", "127.0.0.1", "::1", "10.0.0.1", "192.168.1.1", "172.16.4.2", "::", "fe80::1"} {
		city, country := GetIPLocation(ip)
		assert.Empty(t, city, ip)
		assert.Empty(t, country, ip)
	}
}

func TestGetIPLocation_NoDB(t *testing.T) {
	CloseGeoIP()
	geoipMu.Lock()
	geoipCache = nil
	geoipMu.Unlock()

	_, missesBefore, _ := GetGeoIPCacheMetrics()
	city, country := GetIPLocation("8.8.8.8")
	assert.Empty(t, city)
	assert.Empty(t, country)

	_, missesAfter, size := GetGeoIPCacheMetrics()
	assert.Equal(t, missesBefore+1, missesAfter)
	assert.Equal(t, 0, size)
}

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "Madrid/Spain", formatLocation("Madrid", "Spain"))
	assert.Equal(t, "Spain", formatLocation("", "Spain"))
	assert.Equal(t, "Madrid", formatLocation("Madrid", ""))
	assert.Equal(t, "", formatLocation("", ""))
}
