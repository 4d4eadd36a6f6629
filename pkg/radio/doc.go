// ABOUTME: Radio player package
// ABOUTME: Station switching, skipping and periodic sync on the broadcast clock
// Package radio ties station loading, playable-audio resolution and the
// broadcast clock together into a player.
//
// Every sync runs under one lock, so the periodic tick, station switches,
// skips and focus-regain resumes never overlap. Loads happen outside the
// lock; each carries a per-station token and only the latest request's
// handle is installed.
//
// Example:
//
//	p, err := radio.NewPlayer(radio.PlayerConfig{
//	    Game:     stations.GTA3(),
//	    Provider: assets.NewDirProvider("sounds"),
//	    Output:   dev,
//	    Sync:     synchronizer,
//	})
//	err = p.Select(ctx, "head")
//	go p.Run(ctx)
package radio
