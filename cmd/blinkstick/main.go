// Command blinkstick controls BlinkStick USB LED devices from the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"blinkstick"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "blinkstick",
		Usage: "control BlinkStick devices",
		Commands: []*cli.Command{
			{
				Name:      "set-color",
				Usage:     "set the color of a BlinkStick LED",
				ArgsUsage: "<color>",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Value:   0,
						Usage:   "LED index (0 is the first LED)",
					},
				},
				Action: setColorAction,
			},
			{
				Name:      "pulse",
				Usage:     "pulse a color on the first LED",
				ArgsUsage: "<color>",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:    "duration",
						Aliases: []string{"d"},
						Value:   1000,
						Usage:   "duration of each fade phase in milliseconds",
					},
					&cli.UintFlag{
						Name:    "steps",
						Aliases: []string{"s"},
						Value:   20,
						Usage:   "number of steps per fade phase",
					},
				},
				Action: pulseAction,
			},
			{
				Name:   "list",
				Usage:  "list connected BlinkStick devices",
				Action: listAction,
			},
			{
				Name:   "info",
				Usage:  "show serial and current color of the first device",
				Action: infoAction,
			},
			{
				Name:   "off",
				Usage:  "turn the first device off",
				Action: offAction,
			},
			{
				Name:  "add-udev-rule",
				Usage: "install a udev rule granting device access (Linux only)",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Value:   "/etc/udev/rules.d",
						Usage:   "udev rules directory",
					},
				},
				Action: addUdevRuleAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// argColor resolves the single positional color token: name, then hex, then
// the literal "random".
func argColor(c *cli.Context) (blinkstick.RgbColor, error) {
	if c.NArg() != 1 {
		return blinkstick.RgbColor{}, fmt.Errorf("expected exactly one color argument")
	}
	return blinkstick.ParseColor(c.Args().First())
}

// swatch renders a colored dot next to textual RGB output.
func swatch(col blinkstick.RgbColor) string {
	return color.RGB(int(col.R), int(col.G), int(col.B)).Sprint("●")
}

func setColorAction(c *cli.Context) error {
	col, err := argColor(c)
	if err != nil {
		return err
	}
	index := c.Uint("index")
	if index > 7 {
		return fmt.Errorf("led index %d out of range 0..7", index)
	}

	dev, err := blinkstick.FindFirst()
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.SetColorIndexed(byte(index), col); err != nil {
		return err
	}
	fmt.Printf("%s set color to %s at index %d\n", swatch(col), col, index)
	return nil
}

func pulseAction(c *cli.Context) error {
	col, err := argColor(c)
	if err != nil {
		return err
	}
	duration := time.Duration(c.Uint("duration")) * time.Millisecond
	steps := c.Uint("steps")

	dev, err := blinkstick.FindFirst()
	if err != nil {
		return err
	}
	defer dev.Close()

	log.Info().Str("color", col.Hex()).Dur("duration", duration).Uint("steps", steps).Msg("pulsing")
	return dev.Pulse(col, duration, steps)
}

func listAction(*cli.Context) error {
	devices, done, err := blinkstick.FindAll()
	if err != nil {
		return err
	}
	defer done()
	if len(devices) == 0 {
		fmt.Println("No BlinkStick devices found")
		return nil
	}

	fmt.Printf("Found %d BlinkStick device(s):\n", len(devices))
	for i, d := range devices {
		serial := "Unknown"
		sess, err := d.Open()
		if err == nil {
			if s, err := sess.Serial(); err == nil {
				serial = s
			}
			sess.Close()
		} else {
			log.Warn().Err(err).Int("device", i+1).Msg("could not open device")
		}
		fmt.Printf("  %d. Serial: %s\n", i+1, serial)
	}
	return nil
}

func infoAction(*cli.Context) error {
	dev, err := blinkstick.FindFirst()
	if err != nil {
		return err
	}
	defer dev.Close()

	serial, err := dev.Serial()
	if err != nil {
		serial = "Unknown"
	}
	col, err := dev.GetColor()
	if err != nil {
		return err
	}

	fmt.Println("BlinkStick information:")
	fmt.Printf("  Serial: %s\n", serial)
	fmt.Printf("  Current color: %s %s (#%s)\n", swatch(col), col, col.Hex())
	return nil
}

func offAction(*cli.Context) error {
	dev, err := blinkstick.FindFirst()
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.SetColor(blinkstick.RgbColor{}); err != nil {
		return err
	}
	fmt.Println("BlinkStick turned off")
	return nil
}

func addUdevRuleAction(c *cli.Context) error {
	path, err := blinkstick.WriteUdevRule(c.Path("path"))
	if err != nil {
		return err
	}
	fmt.Printf("Udev rule written to %s\n", path)
	fmt.Println("Run 'sudo udevadm control --reload-rules && sudo udevadm trigger' or replug the device for it to take effect")
	return nil
}
