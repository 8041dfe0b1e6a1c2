package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thereayou/ephroom/client"
	"github.com/thereayou/ephroom/client/rest"
	"github.com/thereayou/ephroom/internal/models"
)

type cli struct {
	api       *rest.Client
	session   *client.Session
	directory *client.Directory
	occupancy *client.Occupancy

	user   *models.User
	queues map[uuid.UUID]*client.Queue
	chats  map[uuid.UUID]*client.Chat
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "server base URL")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	register := flag.Bool("register", false, "create the account first")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	ctx := context.Background()
	api := rest.New(*serverURL)
	session := client.NewSession(api)

	if *register {
		if err := session.SignUp(ctx, *email, *password); err != nil {
			log.Fatalf("sign up failed: %v", err)
		}
		fmt.Println("account created")
	}

	user, err := session.SignIn(ctx, *email, *password)
	if err != nil {
		log.Fatalf("sign in failed: %v", err)
	}
	fmt.Printf("signed in as %s\n", user.Email)

	app := &cli{
		api:       api,
		session:   session,
		directory: client.NewDirectory(api),
		occupancy: client.NewOccupancy(api, session),
		user:      user,
		queues:    make(map[uuid.UUID]*client.Queue),
		chats:     make(map[uuid.UUID]*client.Chat),
	}

	if err := app.chooseSchool(ctx); err != nil {
		log.Fatalf("school selection failed: %v", err)
	}

	app.loop(ctx)

	app.directory.Close()
	if err := session.SignOut(ctx); err != nil {
		log.Printf("sign out failed: %v", err)
	}
}

func (a *cli) chooseSchool(ctx context.Context) error {
	schools, err := a.api.Schools(ctx)
	if err != nil {
		return err
	}
	if len(schools) == 0 {
		return fmt.Errorf("no schools registered")
	}

	fmt.Println("schools:")
	for i, school := range schools {
		fmt.Printf("  %d. %s (%s)\n", i+1, school.Name, school.Code)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("select school: ")
	line, _ := reader.ReadString('\n')
	idx, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || idx < 1 || idx > len(schools) {
		return fmt.Errorf("invalid selection")
	}
	school := schools[idx-1]

	// переключение школы закрывает старую ленту до открытия новой
	if err := a.directory.Select(ctx, school.ID); err != nil {
		return err
	}

	profile := &models.Profile{ID: a.user.ID, SchoolID: &school.ID, UpdatedAt: time.Now().UTC()}
	if err := a.api.SaveProfile(ctx, profile); err != nil {
		log.Printf("failed to save school preference: %v", err)
	}

	fmt.Printf("school: %s\n", school.Name)
	return nil
}

func (a *cli) loop(ctx context.Context) {
	fmt.Println("commands: rooms [search], toggle N, queue N, join N, leave N, chat N, say N text, school, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit":
			return

		case "school":
			if err := a.chooseSchool(ctx); err != nil {
				fmt.Printf("error: %v\n", err)
			}

		case "rooms":
			search := strings.Join(fields[1:], " ")
			a.printRooms(a.directory.Filter(search, client.FilterAll))

		case "toggle":
			a.withRoom(fields, func(room models.Room) {
				if err := a.occupancy.Toggle(ctx, room); err != nil {
					fmt.Printf("error: %v\n", err)
				}
			})

		case "queue":
			a.withRoom(fields, func(room models.Room) { a.printQueue(ctx, room) })

		case "join":
			a.withRoom(fields, func(room models.Room) {
				if err := a.roomQueue(ctx, room).Join(ctx, a.user.ID); err != nil {
					fmt.Printf("error: %v\n", err)
				}
			})

		case "leave":
			a.withRoom(fields, func(room models.Room) {
				if err := a.roomQueue(ctx, room).Leave(ctx, a.user.ID); err != nil {
					fmt.Printf("error: %v\n", err)
				}
			})

		case "chat":
			a.withRoom(fields, func(room models.Room) { a.printChat(ctx, room) })

		case "say":
			if len(fields) < 3 {
				fmt.Println("usage: say N text")
				continue
			}
			a.withRoom(fields[:2], func(room models.Room) {
				chat := a.roomChat(ctx, room)
				if chat == nil {
					return
				}
				if err := chat.Send(ctx, strings.Join(fields[2:], " ")); err != nil {
					fmt.Printf("error: %v\n", err)
				}
			})

		default:
			fmt.Println("unknown command")
		}
	}
}

func (a *cli) withRoom(fields []string, fn func(models.Room)) {
	if len(fields) < 2 {
		fmt.Println("room number required")
		return
	}
	rooms := a.directory.Rooms()
	idx, err := strconv.Atoi(fields[1])
	if err != nil || idx < 1 || idx > len(rooms) {
		fmt.Println("no such room")
		return
	}
	fn(rooms[idx-1])
}

func (a *cli) printRooms(rooms []models.Room) {
	now := time.Now()
	for i, room := range rooms {
		status := client.RoomStatus(room, now)
		line := fmt.Sprintf("  %d. %-20s [%s]", i+1, room.Name, status)
		if room.IsOccupied {
			line += fmt.Sprintf(" in use for %d min", client.OccupiedMinutes(room, now))
		}
		fmt.Println(line)
	}
}

func (a *cli) roomQueue(ctx context.Context, room models.Room) *client.Queue {
	if q, ok := a.queues[room.ID]; ok {
		return q
	}
	q := client.NewQueue(a.api, room.ID)
	if err := q.Open(ctx); err != nil {
		fmt.Printf("error: %v\n", err)
	}
	a.queues[room.ID] = q
	return q
}

func (a *cli) printQueue(ctx context.Context, room models.Room) {
	q := a.roomQueue(ctx, room)
	entries := q.Entries()
	if len(entries) == 0 {
		fmt.Println("no one is waiting")
		return
	}
	for i, entry := range entries {
		who := fmt.Sprintf("User %s", entry.UserID.String()[:4])
		if entry.UserID == a.user.ID {
			who = "You"
		}
		fmt.Printf("  %d. %s (requested %s)\n", i+1, who, entry.RequestedAt.Format("15:04:05"))
	}
}

func (a *cli) roomChat(ctx context.Context, room models.Room) *client.Chat {
	if c, ok := a.chats[room.ID]; ok {
		return c
	}

	chat := client.NewChat(a.api, room.ID, *a.user, client.RetryPolicy{
		MaxAttempts: 3,
		Delay:       time.Second,
		OnExhausted: func(err error) {
			fmt.Printf("failed to load messages: %v\n", err)
		},
	})
	chat.OnMessage = func(msg models.RoomMessage) {
		fmt.Printf("[%s] %s: %s\n", room.Name, chat.SenderLabel(msg.SenderID), msg.Message)
	}

	if err := chat.Open(ctx); err != nil {
		fmt.Printf("error: %v\n", err)
		return nil
	}
	a.chats[room.ID] = chat
	return chat
}

func (a *cli) printChat(ctx context.Context, room models.Room) {
	chat := a.roomChat(ctx, room)
	if chat == nil {
		return
	}
	for _, msg := range chat.Messages() {
		fmt.Printf("  %s %s: %s\n", msg.SentAt.Format("15:04:05"), chat.SenderLabel(msg.SenderID), msg.Message)
	}
}
