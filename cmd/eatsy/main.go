// Command eatsy is a terminal front end for the Eatsy food-ordering service:
// it wires the cart and session stores to the remote API and drives them
// from an interactive prompt. The stores own all state; the loop below only
// reads them and invokes operations, like any other view.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deepak9783/Eatsy/config"
	"github.com/deepak9783/Eatsy/internal/api"
	"github.com/deepak9783/Eatsy/internal/domain"
	"github.com/deepak9783/Eatsy/internal/infrastructure/cache"
	"github.com/deepak9783/Eatsy/internal/notify"
	"github.com/deepak9783/Eatsy/internal/statefile"
	"github.com/deepak9783/Eatsy/internal/store"
	"github.com/deepak9783/Eatsy/pkg/logger"
)

const (
	appName    = "eatsy"
	appVersion = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	client, err := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, cfg.RequestsPerSec, cfg.RequestBurst)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize API client")
	}

	// Toasts go straight to the terminal.
	notifier := notify.Func{
		OnSuccess: func(msg string) { fmt.Println("✔", msg) },
		OnError:   func(msg string) { fmt.Println("✖", msg) },
	}

	// --- Stores Initialization ---

	slot := statefile.NewSlot(cfg.StateFilePath)
	sessions := store.NewSessionStore(client, notifier, slot)

	stash := cache.NewMemoryStash(cfg.CartStashTTL, cfg.CartStashTTL/2)
	carts := store.NewCartStore(
		store.WithStash(stash),
		store.WithMaxQuantity(cfg.MaxCartQuantity),
	)

	logger.AppStart(appName, appVersion, cfg.APIBaseURL)
	defer logger.AppStop(appName)

	// Resolve the unknown session state before the prompt comes up.
	sessions.CheckAuthentication(context.Background())
	if s := sessions.Session(); s.IsAuthenticated {
		fmt.Printf("Welcome back, %s!\n", s.User.Fullname)
	}

	runPrompt(client, sessions, carts)
}

func runPrompt(client *api.Client, sessions *store.SessionStore, carts *store.CartStore) {
	scanner := bufio.NewScanner(os.Stdin)
	var lastMenu []domain.MenuItem

	fmt.Println(`Type "help" for commands.`)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		switch cmd {
		case "help":
			printHelp()
		case "search":
			lastMenu = nil
			runSearch(ctx, client, strings.Join(args, " "))
		case "menu":
			if len(args) != 1 {
				fmt.Println("usage: menu <restaurant-id>")
				break
			}
			lastMenu = runMenu(ctx, client, args[0])
		case "add":
			if len(args) != 1 {
				fmt.Println("usage: add <menu-row-number>")
				break
			}
			addFromMenu(carts, lastMenu, args[0])
		case "cart":
			printCart(carts)
		case "inc":
			if len(args) == 1 {
				carts.IncrementQuantity(args[0])
			}
		case "dec":
			if len(args) == 1 {
				carts.DecrementQuantity(args[0])
			}
		case "rm":
			if len(args) == 1 {
				carts.RemoveFromTheCart(args[0])
			}
		case "clear":
			carts.ClearCart()
		case "signup":
			if len(args) < 3 {
				fmt.Println("usage: signup <fullname> <email> <password> [contact]")
				break
			}
			input := domain.SignupInput{Fullname: args[0], Email: args[1], Password: args[2]}
			if len(args) > 3 {
				input.Contact = args[3]
			}
			sessions.Signup(ctx, input)
		case "login":
			if len(args) != 2 {
				fmt.Println("usage: login <email> <password>")
				break
			}
			sessions.Login(ctx, domain.LoginInput{Email: args[0], Password: args[1]})
		case "verify":
			if len(args) == 1 {
				sessions.VerifyEmail(ctx, args[0])
			}
		case "logout":
			sessions.Logout(ctx)
		case "forgot":
			if len(args) == 1 {
				sessions.ForgotPassword(ctx, args[0])
			}
		case "reset":
			if len(args) == 2 {
				sessions.ResetPassword(ctx, args[0], args[1])
			}
		case "whoami":
			printSession(sessions)
		case "quit", "exit":
			cancel()
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
		cancel()
	}
}

func runSearch(ctx context.Context, client *api.Client, query string) {
	restaurants, err := client.SearchRestaurants(ctx, query)
	if err != nil {
		fmt.Println("✖", domain.UserMessage(err))
		return
	}
	if len(restaurants) == 0 {
		fmt.Println("No restaurants found.")
		return
	}
	for _, r := range restaurants {
		fmt.Printf("%s  %s (%s, %s) — %s\n", r.ID, r.Name, r.City, r.Country, strings.Join(r.Cuisines, ", "))
	}
}

func runMenu(ctx context.Context, client *api.Client, restaurantID string) []domain.MenuItem {
	menu, err := client.GetRestaurantMenu(ctx, restaurantID)
	if err != nil {
		fmt.Println("✖", domain.UserMessage(err))
		return nil
	}
	for i, item := range menu {
		fmt.Printf("%2d. %-30s $%s  %s\n", i+1, item.Name, item.Price.StringFixed(2), item.Description)
	}
	return menu
}

func addFromMenu(carts *store.CartStore, menu []domain.MenuItem, arg string) {
	var row int
	if _, err := fmt.Sscanf(arg, "%d", &row); err != nil || row < 1 || row > len(menu) {
		fmt.Println("Pick a row from the last menu listing.")
		return
	}
	item := menu[row-1]
	carts.AddToCart(item.CartItem())
	fmt.Printf("Added %s to cart.\n", item.Name)
}

func printCart(carts *store.CartStore) {
	cart := carts.Cart()
	if len(cart.Items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	for _, item := range cart.Items {
		fmt.Printf("%s  %-30s x%d  $%s\n", item.ID, item.Name, item.Quantity, item.LineTotal().StringFixed(2))
	}
	fmt.Printf("Total: $%s\n", cart.TotalAmount().StringFixed(2))
}

func printSession(sessions *store.SessionStore) {
	s := sessions.Session()
	if !s.IsAuthenticated {
		fmt.Println("Not logged in.")
		return
	}
	fmt.Printf("%s <%s> verified=%t admin=%t\n", s.User.Fullname, s.User.Email, s.User.IsVerified, s.User.Admin)
}

func printHelp() {
	fmt.Println(`search <text>                      find restaurants by name, city or country
menu <restaurant-id>               list a restaurant's menu
add <row>                          add a row of the last menu to the cart
cart | inc <id> | dec <id> | rm <id> | clear
signup <fullname> <email> <password> [contact]
login <email> <password> | logout | verify <code>
forgot <email> | reset <token> <new-password>
whoami | quit`)
}
