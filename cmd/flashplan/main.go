// Command flashplan is the build-time gate for the power-feed controller
// firmware: it computes the flash layout of a board revision, emits the
// matching linker script, and verifies that a linked image stays out of the
// reserved emulated-EEPROM pages. Any overlap is fatal and exits non-zero.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/feedctl/go-flashplan/eeprom"
	"github.com/feedctl/go-flashplan/flash/memflash"
	"github.com/feedctl/go-flashplan/flashplan"
	"github.com/feedctl/go-flashplan/flashplan/config/board"
	"github.com/feedctl/go-flashplan/settings"
)

const usage = `usage: flashplan <command> [flags]

commands:
  plan       print the computed memory layout for a board revision
  ldscript   emit the linker script for a board revision
  check      verify that a firmware image fits the code region
  settings   decode a storage-region image and print the settings
  provision  build a storage-region image holding the setting defaults
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "flashplan:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "plan":
		return runPlan(args)
	case "ldscript":
		return runLdscript(args)
	case "check":
		return runCheck(args)
	case "settings":
		return runSettings(args)
	case "provision":
		return runProvision(args)
	default:
		return errors.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func parseBoard(s string) (board.Board, error) {
	var b board.Board
	if err := b.UnmarshalBinary([]byte(s)); err != nil {
		return "", err
	}
	return b, nil
}

func loadPlan(configPath, target string) (*flashplan.Plan, error) {
	b, err := parseBoard(target)
	if err != nil {
		return nil, err
	}
	return flashplan.PlanForBoard(context.Background(), configPath, b)
}

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	configPath := fs.String("config", flashplan.DefaultTargetsPath, "target table")
	target := fs.String("target", string(board.PowerFeedV2), "board revision")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := loadPlan(*configPath, *target)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", *target, plan)
	return nil
}

func runLdscript(args []string) error {
	fs := flag.NewFlagSet("ldscript", flag.ExitOnError)
	configPath := fs.String("config", flashplan.DefaultTargetsPath, "target table")
	target := fs.String("target", string(board.PowerFeedV2), "board revision")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := loadPlan(*configPath, *target)
	if err != nil {
		return err
	}
	script := plan.LinkerScript()
	if *out == "" {
		_, err := os.Stdout.Write(script)
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(*out, script, 0666))
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", flashplan.DefaultTargetsPath, "target table")
	target := fs.String("target", string(board.PowerFeedV2), "board revision")
	image := fs.String("image", "", "firmware image (.hex or .bin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *image == "" {
		return errors.New("check: -image is required")
	}
	plan, err := loadPlan(*configPath, *target)
	if err != nil {
		return err
	}
	img, err := flashplan.OpenImage(*image, plan.FlashOrigin)
	if err != nil {
		return err
	}
	// Success is silent; the exit code is the result.
	return plan.CheckImage(img)
}

func openStore(plan *flashplan.Plan, image []byte) (*eeprom.Store, error) {
	if plan.ReservedPages < 2 {
		return nil, errors.Errorf("board reserves %d pages, the settings store needs at least 2",
			plan.ReservedPages)
	}
	if uint32(len(image)) != plan.Storage.Size() {
		return nil, errors.Errorf("image is %d bytes, the storage region is %d bytes",
			len(image), plan.Storage.Size())
	}
	dev := memflash.FromBytes(image, plan.PageSize)
	return eeprom.Open(dev, plan.ReservedPages)
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	configPath := fs.String("config", flashplan.DefaultTargetsPath, "target table")
	target := fs.String("target", string(board.PowerFeedV2), "board revision")
	image := fs.String("image", "", "storage-region image (.bin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *image == "" {
		return errors.New("settings: -image is required")
	}
	plan, err := loadPlan(*configPath, *target)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(*image)
	if err != nil {
		return errors.WithStack(err)
	}
	store, err := openStore(plan, b)
	if err != nil {
		return err
	}
	for _, s := range settings.Catalog {
		v, err := s.Read(store)
		if err != nil {
			return err
		}
		fmt.Printf("%-14s %d\n", s.Label, v)
	}
	spi, err := settings.StepsPerInch(store)
	if err != nil {
		return err
	}
	fmt.Printf("%-14s %d\n", "Steps/inch", spi)
	return nil
}

func runProvision(args []string) error {
	fs := flag.NewFlagSet("provision", flag.ExitOnError)
	configPath := fs.String("config", flashplan.DefaultTargetsPath, "target table")
	target := fs.String("target", string(board.PowerFeedV2), "board revision")
	out := fs.String("o", "", "output storage-region image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("provision: -o is required")
	}
	plan, err := loadPlan(*configPath, *target)
	if err != nil {
		return err
	}
	if plan.ReservedPages < 2 {
		return errors.Errorf("board reserves %d pages, the settings store needs at least 2",
			plan.ReservedPages)
	}
	dev := memflash.New(plan.Storage.Size(), plan.PageSize)
	store, err := eeprom.Open(dev, plan.ReservedPages)
	if err != nil {
		return err
	}
	if err := store.Init(); err != nil {
		return err
	}
	for _, s := range settings.Catalog {
		if err := s.Write(store, s.Default); err != nil {
			return err
		}
	}
	return errors.WithStack(os.WriteFile(*out, dev.Bytes(), 0666))
}
