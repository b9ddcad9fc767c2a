package cmd

import (
	"fmt"

	"github.com/kiosk404/warp/pkg/version"
)

const bannerText = `
 __      __ ____   ____
 \ \    / /|  _ \ |  _ \
  \ \/\/ / | |_) || |_) |
   \_/\_/  |_| \_\|  __/
                  |_|

   Tool-calling chat over MCP
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Version: %s\n", bannerText, version.Get().String())
}
