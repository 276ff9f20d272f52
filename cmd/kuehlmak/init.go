package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/urfave/cli/v2"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// qwertyBaseText is the starting point for "init": standard QWERTY,
// shuffled by the command unless --shuffle=false.
const qwertyBaseText = `q w e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`

var initCommand = &cli.Command{
	Name:   "init",
	Usage:  "Emit a random (or QWERTY) starting layout to stdout",
	Flags:  append(flagsSlice("seed"), &cli.BoolFlag{Name: "shuffle", Usage: "shuffle the base layout", Value: true}),
	Action: initAction,
}

func initAction(c *cli.Context) error {
	base, err := kuehlmak.ParseLayout(qwertyBaseText)
	if err != nil {
		return err
	}

	if c.Bool("shuffle") {
		seed := c.Uint64("seed")
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		for i := kuehlmak.NumKeys - 2; i > 0; i-- {
			j := rng.IntN(i + 1)
			base.Swap(uint8(i), uint8(j))
		}
	}

	fmt.Println(base.String())
	return nil
}
