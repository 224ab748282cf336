// Package main runs the interactive contacts client: an offline-first shell
// over the sync engine, talking to the remote directory and the local cache.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nexoft/contacts/internal/api"
	"github.com/nexoft/contacts/internal/cache"
	"github.com/nexoft/contacts/internal/config"
	"github.com/nexoft/contacts/internal/device"
	"github.com/nexoft/contacts/internal/engine"
	"github.com/nexoft/contacts/internal/history"
	"github.com/nexoft/contacts/internal/logger"
	"github.com/nexoft/contacts/internal/models"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to manage contacts.
func repl(o *engine.Orchestrator, hist *history.Store) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("contacts> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()

		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, list, reload, add, edit <id>, delete <id>, search <query>, history, clear-history, device <id>, exit")
		case "list":
			printContacts(o.Contacts())
		case "reload":
			if err := o.Load(ctx); err != nil {
				fmt.Println("load error:", err)
			}
			printContacts(o.Contacts())
		case "add":
			draft := promptForContact(models.Contact{})
			added, err := o.Add(ctx, draft)
			if err != nil {
				fmt.Println("add failed:", err)
				continue
			}
			fmt.Printf("Added %s (%s)\n", added.FullName(), added.ID)
		case "edit":
			if len(args) < 2 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			current, ok := findContact(o.Contacts(), args[1])
			if !ok {
				fmt.Println("Contact not found")
				continue
			}
			edited := promptForContact(current)
			if _, err := o.Update(ctx, edited); err != nil {
				fmt.Println("update failed:", err)
				continue
			}
			fmt.Println("Contact updated")
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			contact, ok := findContact(o.Contacts(), args[1])
			if !ok {
				fmt.Println("Contact not found")
				continue
			}
			if err := o.Delete(ctx, contact); err != nil {
				fmt.Println("delete failed:", err)
				continue
			}
			fmt.Println("Contact deleted")
		case "search":
			if len(args) < 2 {
				fmt.Println("Usage: search <query>")
				continue
			}
			query := strings.Join(args[1:], " ")
			if err := hist.Record(query); err != nil {
				fmt.Println("history save failed:", err)
			}
			printContacts(o.Filter(query))
		case "history":
			for _, q := range hist.Entries() {
				fmt.Println(" ", q)
			}
		case "clear-history":
			if err := hist.Clear(); err != nil {
				fmt.Println("history clear failed:", err)
			}
		case "device":
			if len(args) < 2 {
				fmt.Println("Usage: device <id>")
				continue
			}
			contact, ok := findContact(o.Contacts(), args[1])
			if !ok {
				fmt.Println("Contact not found")
				continue
			}
			if err := o.SaveToDevice(ctx, contact); err != nil {
				fmt.Println("device save failed:", err)
				continue
			}
			fmt.Println("Saved to device address book")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func printContacts(contacts []models.Contact) {
	if len(contacts) == 0 {
		fmt.Println("No contacts")
		return
	}
	for _, c := range contacts {
		device := " "
		if c.InDeviceDirectory {
			device = "*"
		}
		fmt.Printf("%s %-30s %-15s %s\n", device, c.FullName(), c.PhoneNumber, c.ID)
	}
}

func findContact(contacts []models.Contact, id string) (models.Contact, bool) {
	for _, c := range contacts {
		if c.ID == id {
			return c, true
		}
	}
	return models.Contact{}, false
}

func main() {
	options := config.Parse()

	showVer := false
	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			showVer = true
		}
	}
	if showVer {
		fmt.Printf("Contacts Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Warn"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	store, err := cache.New(options.CachePath)
	if err != nil {
		log.Log.Fatal("cannot open contact cache", zap.Error(err))
	}
	defer store.Close()

	hist, err := history.New(options.HistoryPath)
	if err != nil {
		log.Log.Fatal("cannot open search history", zap.Error(err))
	}

	client := api.NewClient(options.BaseURL, options.APIKey,
		&http.Client{Timeout: 30 * time.Second}, log.Log)
	dir := device.NewFileDirectory(options.DevicePath)

	o := engine.New(client, store, dir, log.Log)
	defer o.Close()

	if err := o.Load(context.Background()); err != nil {
		// Offline view still works from the cache.
		fmt.Println("sync error:", err)
	}
	printContacts(o.Contacts())

	repl(o, hist)
}
