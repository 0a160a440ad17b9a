package main

import (
	"flag"
	"fmt"
	mrand "math/rand"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nihilian/ncheditor/pkg/api"
)

type seedPackage struct {
	Name     string             `toml:"name"`
	Groups   []api.ChannelGroup `toml:"group"`
	Channels []api.Channel      `toml:"channel"`
}

type seedFile struct {
	Packages []seedPackage `toml:"package"`
}

// Writes a seed file for `ncheditor import` to stdout. Packages get enough
// channels with long descriptions that listing them needs several chunks.
func main() {
	packages := flag.Int("packages", 3, "number of packages")
	channels := flag.Int("channels", 200, "channels per package")
	flag.Parse()

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	var seed seedFile
	for p := 0; p < *packages; p++ {
		pkg := seedPackage{Name: fmt.Sprintf("com.example.sample%02d", p+1)}
		groups := 1 + mr.Intn(4)
		for g := 0; g < groups; g++ {
			grp := api.NewChannelGroup(fmt.Sprintf("group%d", g+1), fmt.Sprintf("Group %d", g+1))
			grp.SetDescription(fmt.Sprintf("Sample group %d of %s", g+1, pkg.Name))
			pkg.Groups = append(pkg.Groups, *grp)
		}
		for i := 0; i < *channels; i++ {
			c := api.NewChannel(fmt.Sprintf("channel%03d", i+1), fmt.Sprintf("Sample Channel %03d", i+1), mr.Intn(api.ImportanceMax+1))
			c.SetDescription(fmt.Sprintf("Sample channel %03d of %s, %s", i+1, pkg.Name, lorem(mr)))
			c.SetGroup(fmt.Sprintf("group%d", 1+mr.Intn(groups)))
			if mr.Float64() < 0.3 {
				c.VibrationEnabled = true
				c.SetVibrationPattern([]int64{0, int64(100 + mr.Intn(400)), 100})
			}
			c.Lights = mr.Float64() < 0.2
			c.ShowBadge = mr.Float64() < 0.8
			pkg.Channels = append(pkg.Channels, *c)
		}
		seed.Packages = append(seed.Packages, pkg)
	}

	if err := toml.NewEncoder(os.Stdout).Encode(seed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var words = []string{"alerts", "updates", "reminders", "messages", "promotions", "downloads", "sync", "calls", "events", "backups"}

func lorem(r *mrand.Rand) string {
	n := 8 + r.Intn(12)
	out := words[r.Intn(len(words))]
	for i := 1; i < n; i++ {
		out += " " + words[r.Intn(len(words))]
	}
	return out
}
