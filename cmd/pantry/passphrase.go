package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var hashPassphraseCmd = &cobra.Command{
	Use:   "hash-passphrase [passphrase]",
	Short: "Print the bcrypt hash to use as auth_passphrase_hash",
	Long: `Print the bcrypt hash to use as auth_passphrase_hash.

The passphrase is read from stdin when no argument is given.

Examples:
  pantry hash-passphrase "correct horse battery staple"
  echo "correct horse battery staple" | pantry hash-passphrase`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var passphrase string
		if len(args) == 1 {
			passphrase = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.Wrap(err, "error reading passphrase from stdin")
			}
			passphrase = strings.TrimRight(line, "\r\n")
		}
		if passphrase == "" {
			return errors.New("passphrase is empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "error hashing passphrase")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return err
	},
}
