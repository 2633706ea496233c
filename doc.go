// Package npk reads NXPK game containers and recovers the files inside them.
//
// A container is a flat archive whose entries are identified only by a
// 64-bit structural hash. This package parses the container header and entry
// map, rebuilds the hash to path mapping from the manifest a container may
// embed, and writes every entry back out under its resolved name, correcting
// extensions by sniffing the recovered bytes.
//
// # Quick Start
//
// Unpack a set of containers into one directory:
//
//	res, err := npk.Unpack(ctx, []string{"script.npk"}, "out",
//	    npk.UnpackWithDisplay(os.Stderr),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Stats.Written, "files,", res.Stats.Unknown, "unknown")
//
// Work with a single container:
//
//	c, err := npk.Open("res1.npk")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	pm, err := npk.ResolvePathMap(c)
//	if err != nil {
//	    return err
//	}
//	stats, err := c.Extract(ctx, pm, "out")
//
// # Script Payloads
//
// Script entries are usually NXS payloads: rotor-enciphered, zlib-compressed
// and byte-reversed. [DecryptNXS] and [DecryptNXSFile] recover them, and
// [ExtractWithNXS] does so inline during extraction.
//
// # Pipelines
//
// [UnpackXAPK] runs the full chain for an installer bundle: unzip the bundle
// and its nested archives, unpack script and resource containers, decrypt
// NXS payloads and hand compiled scripts to a [Decompiler].
package npk
