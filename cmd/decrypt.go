package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/decrypt"
)

type decryptArgs struct {
	key string
	iv  string
}

var dArgs decryptArgs

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt stored quiz rows",
	Long:  "Decrypt the quiz rows shipped with the export and store them as plaintext for quiz export",
	RunE:  runDecrypt,
}

func init() {
	decryptCmd.Flags().StringVar(&dArgs.key, "key", "", "hex encoded AES key (env QUIZ_KEY)")
	decryptCmd.Flags().StringVar(&dArgs.iv, "iv", "", "hex encoded AES IV (env QUIZ_IV)")
	RootCmd.AddCommand(decryptCmd)
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	key, iv := cfg.QuizKey, cfg.QuizIV
	if dArgs.key != "" {
		key = dArgs.key
	}
	if dArgs.iv != "" {
		iv = dArgs.iv
	}
	d, err := decrypt.New(key, iv)
	if err != nil {
		return fmt.Errorf("failed to set up decryption: %v", err)
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	enc, err := store.EncryptedQuiz(ctx)
	if err != nil {
		return fmt.Errorf("failed to read encrypted quiz: %v", err)
	}

	rows := d.Rows(enc)
	if err := store.SaveQuizRows(ctx, rows); err != nil {
		return fmt.Errorf("failed to save quiz rows: %v", err)
	}

	slog.Info("decrypted quiz", "blobs", len(enc), "rows", len(rows), "failures", d.Failures())
	return nil
}
