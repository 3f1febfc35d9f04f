package steps

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// firstBootScript configures the device as a dumb AP on first boot. Rendered
// with the configured LAN address.
const firstBootScript = `#!/bin/sh
# Configure Redmi AX5400 (RA74) as a dumb AP on first boot.
uci set network.lan.ipaddr='{{ .LanAddr }}'
uci set network.lan.proto='static'
uci set network.lan.netmask='255.255.255.0'
uci delete network.wan 2>/dev/null
uci delete network.wan6 2>/dev/null

uci set dhcp.lan.ignore='1'

uci set wireless.@wifi-device[0].country='GB'
uci set wireless.@wifi-device[1].country='GB'
uci set wireless.@wifi-iface[0].disabled='0'
uci set wireless.@wifi-iface[1].disabled='0'

uci set firewall.@defaults[0].syn_flood='0'
uci set firewall.@defaults[0].input='ACCEPT'
uci set firewall.@defaults[0].forward='ACCEPT'
uci set firewall.@defaults[0].output='ACCEPT'
/etc/init.d/firewall disable 2>/dev/null

uci commit
`

const backupBanner = `Backup generated on {{ dateInZone "2006-01-02T15:04:05" now "UTC" }}Z
Source host: {{ .Host }}
Remote path: {{ .RemotePath }}
`

const vendorPlaceholder = `Populate this directory with vendor firmware blobs
collected from {{ .User }}@{{ .Host }}:{{ .Path }} before building.
`

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", name, err)
	}
	return buf.String(), nil
}
