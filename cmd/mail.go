package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"telaah/internal/models"
	"telaah/internal/output"
	"telaah/internal/poll"
)

var (
	mailSubject    string
	mailBody       string
	mailAttachment string
	mailDestDir    string
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Internal messages between review users",
}

var mailInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List received messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailListRun(models.MailboxInbox)
	},
}

var mailSentCmd = &cobra.Command{
	Use:   "sent",
	Short: "List sent messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailListRun(models.MailboxSent)
	},
}

var mailSendCmd = &cobra.Command{
	Use:   "send <recipient-id>",
	Short: "Send a message, optionally with a file attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailSendRun(args[0])
	},
}

var mailReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Show a message and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailReadRun(args[0])
	},
}

var mailDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your sent messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailDeleteRun(args[0])
	},
}

var mailAttachmentCmd = &cobra.Command{
	Use:   "attachment <id>",
	Short: "Download a message's attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailAttachmentRun(args[0])
	},
}

var mailUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show the unread-message count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailUnreadRun()
	},
}

var mailWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the unread count until interrupted (Enter re-polls now)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mailWatchRun(cmd.Context())
	},
}

func init() {
	mailSendCmd.Flags().StringVar(&mailSubject, "subject", "", "Message subject")
	mailSendCmd.Flags().StringVar(&mailBody, "body", "", "Message body")
	mailSendCmd.Flags().StringVar(&mailAttachment, "attach", "", "Path of a file to attach")
	mailAttachmentCmd.Flags().StringVar(&mailDestDir, "dest", "", "Directory to save into (default: download_dir)")

	mailCmd.AddCommand(mailInboxCmd)
	mailCmd.AddCommand(mailSentCmd)
	mailCmd.AddCommand(mailSendCmd)
	mailCmd.AddCommand(mailReadCmd)
	mailCmd.AddCommand(mailDeleteCmd)
	mailCmd.AddCommand(mailAttachmentCmd)
	mailCmd.AddCommand(mailUnreadCmd)
	mailCmd.AddCommand(mailWatchCmd)
	rootCmd.AddCommand(mailCmd)
}

func mailListRun(mailbox string) error {
	messages, err := getClient().GetMessages(context.Background(), mailbox)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		ui.Info("No messages.")
		return nil
	}

	who := "FROM"
	if mailbox == models.MailboxSent {
		who = "TO"
	}
	table := ui.Table([]string{"ID", who, "SUBJECT", "WHEN", ""})
	for _, m := range messages {
		flags := ""
		if !m.IsRead && mailbox == models.MailboxInbox {
			flags = output.Red("new")
		}
		if m.HasAttachment {
			flags += " +file"
		}
		table.Append([]string{strconv.Itoa(m.ID), m.OtherUser, m.Subject, m.Timestamp, flags})
	}
	table.Render()
	return nil
}

func mailSendRun(recipientArg string) error {
	recipientID, err := strconv.Atoi(recipientArg)
	if err != nil {
		return fmt.Errorf("recipient id must be a number, got %q", recipientArg)
	}
	if mailSubject == "" && mailBody == "" {
		return fmt.Errorf("nothing to send (set --subject or --body)")
	}

	var attachment *os.File
	attachmentName := ""
	if mailAttachment != "" {
		attachment, err = os.Open(mailAttachment)
		if err != nil {
			return err
		}
		defer attachment.Close()
		attachmentName = filepath.Base(mailAttachment)
	}

	if dryRun {
		ui.DryRunMsg("Would send message to user %d", recipientID)
		return nil
	}

	var msg string
	if attachment != nil {
		msg, err = getClient().SendMessage(context.Background(), recipientID, mailSubject, mailBody, attachmentName, attachment)
	} else {
		msg, err = getClient().SendMessage(context.Background(), recipientID, mailSubject, mailBody, "", nil)
	}
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Message sent"
	}
	ui.Success("%s", msg)
	return nil
}

func mailReadRun(idArg string) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("message id must be a number, got %q", idArg)
	}
	ctx := context.Background()
	c := getClient()

	messages, err := c.GetMessages(ctx, models.MailboxInbox)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if m.ID != id {
			continue
		}
		ui.Info("From %s at %s", m.OtherUser, m.Timestamp)
		ui.Info("Subject: %s", m.Subject)
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, m.Body)
		if m.HasAttachment {
			ui.Info("Has attachment: 'telaah mail attachment %d' to download.", m.ID)
		}
		if !m.IsRead {
			if err := c.MarkMessageRead(ctx, id); err != nil {
				ui.Warning("could not mark as read: %v", err)
			}
		}
		return nil
	}
	return fmt.Errorf("no inbox message with id %d", id)
}

func mailDeleteRun(idArg string) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("message id must be a number, got %q", idArg)
	}
	if dryRun {
		ui.DryRunMsg("Would delete message %d", id)
		return nil
	}
	msg, err := getClient().DeleteMessage(context.Background(), id)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Message %d deleted", id)
	}
	ui.Success("%s", msg)
	return nil
}

func mailAttachmentRun(idArg string) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("message id must be a number, got %q", idArg)
	}
	destDir := mailDestDir
	if destDir == "" {
		destDir = viper.GetString("download_dir")
	}
	path, err := getClient().DownloadAttachment(context.Background(), id, destDir)
	if err != nil {
		return err
	}
	ui.Success("Saved %s", path)
	return nil
}

func mailUnreadRun() error {
	count, err := getClient().GetUnreadCount(context.Background())
	if err != nil {
		return err
	}
	ui.Info("Unread messages: %s", output.UnreadColor(count))
	return nil
}

func mailWatchRun(ctx context.Context) error {
	interval := viper.GetDuration("mail.poll_interval")
	if interval <= 0 {
		interval = time.Minute
	}
	c := getClient()

	last := -1
	p := poll.New(interval, func(ctx context.Context) {
		count, err := c.GetUnreadCount(ctx)
		if err != nil {
			ui.Warning("unread count: %v", err)
			return
		}
		if count != last {
			ui.Info("[%s] unread: %s", time.Now().Format("15:04:05"), output.UnreadColor(count))
			last = count
		}
	})

	// Enter re-arms the poller, mirroring the immediate re-check a user
	// expects when they come back to the terminal.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			p.Kick()
		}
	}()

	ui.Info("Watching unread count every %s (Enter to poll now, Ctrl-C to stop).", interval)
	p.Run(ctx)
	return nil
}
