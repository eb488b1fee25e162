// Command speak renders IPA transcription text to a WAV file using a
// speechbox language pack.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		packDir    string
		lang       string
		voice      string
		speed      float64
		pitch      float64
		inflection float64
		sampleRate int
		outPath    string
		cfgFile    string
	)

	cmd := &cobra.Command{
		Use:   "speak <ipa-text>",
		Short: "Render IPA transcription text to a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: false,
			})
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
				if v := viper.GetString("pack"); v != "" {
					packDir = v
				}
				if v := viper.GetString("lang"); v != "" {
					lang = v
				}
				if v := viper.GetString("voice"); v != "" {
					voice = v
				}
			}

			logger.Info("rendering", "pack", packDir, "lang", lang, "voice", voice, "text", args[0])
			return renderToWav(renderOptions{
				packDir:    packDir,
				lang:       lang,
				voice:      voice,
				ipaText:    args[0],
				speed:      speed,
				pitch:      pitch,
				inflection: inflection,
				sampleRate: sampleRate,
				outPath:    outPath,
			}, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&packDir, "pack", "", "language pack directory (required)")
	flags.StringVar(&lang, "lang", "default", "language tag to select")
	flags.StringVar(&voice, "voice", "", "voice profile name (empty = unscaled)")
	flags.Float64Var(&speed, "speed", 1.0, "speaking rate multiplier")
	flags.Float64Var(&pitch, "pitch", 0, "base pitch in Hz (0 = 120 Hz default)")
	flags.Float64Var(&inflection, "inflection", 1.0, "pitch excursion multiplier")
	flags.IntVar(&sampleRate, "rate", 22050, "output sample rate")
	flags.StringVarP(&outPath, "out", "o", "out.wav", "output WAV file path")
	flags.StringVar(&cfgFile, "config", "", "optional YAML/JSON config overriding pack/lang/voice")
	cmd.MarkFlagRequired("pack")

	return cmd
}
