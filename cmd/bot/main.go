package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/jtk5aw/random-image-site/internal/cache"
	"github.com/jtk5aw/random-image-site/internal/storage"
)

const (
	uploadChannelName = "images"
	tokenSecretID     = "discord_api_token"
	downloadTimeout   = 30 * time.Second
)

type bot struct {
	pool     *storage.PoolStorage
	channels *cache.ChannelCache
	group    string
	http     *http.Client
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx := context.Background()

	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal("Failed to load AWS config:", err)
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		token, err = fetchToken(ctx, secretsmanager.NewFromConfig(awsConfig))
		if err != nil {
			log.Fatal("Failed to fetch Discord token:", err)
		}
	}

	s3Config, err := storage.LoadS3ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	group := os.Getenv("IMAGE_GROUP")
	if group == "" {
		group = "discord"
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatal("Failed to create Discord session:", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &bot{
		pool:  storage.NewPoolStorage(s3.NewFromConfig(awsConfig), s3Config.Bucket),
		group: group,
		http:  &http.Client{Timeout: downloadTimeout},
	}
	b.channels = cache.NewChannelCache(func(guildID string) (string, error) {
		return findUploadChannel(session, guildID)
	})

	session.AddHandler(b.onMessageCreate)

	if err := session.Open(); err != nil {
		log.Fatal("Failed to open Discord session:", err)
	}
	defer session.Close()
	log.Println("Bot is running. Press CTRL-C to exit.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down")
}

// findUploadChannel returns the id of the guild's upload channel, or "" when
// the guild has none.
func findUploadChannel(s *discordgo.Session, guildID string) (string, error) {
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("list guild channels: %w", err)
	}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildText && channel.Name == uploadChannelName {
			return channel.ID, nil
		}
	}
	return "", nil
}

func (b *bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if len(m.Attachments) == 0 {
		return
	}

	channelID, err := b.channels.Get(m.GuildID)
	if err != nil {
		log.Printf("Failed to resolve upload channel for guild %s: %v", m.GuildID, err)
		return
	}
	if channelID == "" || m.ChannelID != channelID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()

	key, err := b.storeAttachment(ctx, m.Attachments[0])
	if err != nil {
		log.Printf("Failed to store attachment from %s: %v", m.Author.Username, err)
		b.reply(s, m, "Sorry, I couldn't add that image. Make sure it's a JPEG, PNG or WebP under 10MB.")
		return
	}

	log.Printf("Added %s to the pool for %s", key, m.Author.Username)
	b.reply(s, m, "Added to the image pool!")
}

// storeAttachment downloads the attachment, normalizes it to JPEG and uploads
// it into the pool under a fresh key.
func (b *bot) storeAttachment(ctx context.Context, attachment *discordgo.MessageAttachment) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build attachment request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download attachment: unexpected status %d", resp.StatusCode)
	}

	data, contentType, err := storage.ProcessPoolImage(resp.Body, storage.DefaultPoolOptions())
	if err != nil {
		return "", fmt.Errorf("process attachment: %w", err)
	}

	key := fmt.Sprintf("%s/%s_%s.jpg", b.group, b.group, uuid.NewString())
	if err := b.pool.PutImage(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (b *bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	_, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		log.Printf("Failed to reply in channel %s: %v", m.ChannelID, err)
	}
}

func fetchToken(ctx context.Context, client *secretsmanager.Client) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(tokenSecretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", tokenSecretID, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("secret %s is empty", tokenSecretID)
	}
	return *out.SecretString, nil
}
