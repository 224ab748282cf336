package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nexoft/contacts/internal/models"
)

// promptForContact asks for the contact fields interactively. For edits the
// current value is kept when the input is empty.
func promptForContact(current models.Contact) models.Contact {
	scanner := bufio.NewScanner(os.Stdin)

	contact := current
	contact.FirstName = promptField(scanner, "First name", current.FirstName)
	contact.LastName = promptField(scanner, "Last name", current.LastName)
	contact.PhoneNumber = promptField(scanner, "Phone number", current.PhoneNumber)

	fmt.Print("Avatar file path (leave empty to keep current): ")
	scanner.Scan()
	path := strings.TrimSpace(scanner.Text())
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Failed to read file %q: %v\n", path, err)
		} else {
			contact.LocalImage = data
		}
	}

	return contact
}

func promptField(scanner *bufio.Scanner, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	scanner.Scan()
	v := strings.TrimSpace(scanner.Text())
	if v == "" {
		return current
	}
	return v
}
