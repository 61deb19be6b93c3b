package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PageState identifies which step of the purchase flow the live page is on.
// Classification is by exact title match against the locale-variant title
// sets below; anything unmatched is PageUnknown.
type PageState int

const (
	PageUnknown PageState = iota
	PageSignIn
	PageCaptcha
	PageCart
	PageCheckout
	PageOrderComplete
	PagePrime
	PageHomePage
	PageDoggos
	PageTwoFactor
)

func (s PageState) String() string {
	switch s {
	case PageSignIn:
		return "sign-in"
	case PageCaptcha:
		return "captcha"
	case PageCart:
		return "cart"
	case PageCheckout:
		return "checkout"
	case PageOrderComplete:
		return "order-complete"
	case PagePrime:
		return "prime-upsell"
	case PageHomePage:
		return "home-page"
	case PageDoggos:
		return "doggos"
	case PageTwoFactor:
		return "two-factor"
	default:
		return "unknown"
	}
}

// TitleSets holds the known page titles per state. Amazon localizes titles
// per storefront, so each set carries every variant seen so far. Users can
// append more via a YAML overrides file (-titles flag).
type TitleSets struct {
	SignIn        []string `yaml:"sign_in"`
	Captcha       []string `yaml:"captcha"`
	Cart          []string `yaml:"cart"`
	Checkout      []string `yaml:"checkout"`
	OrderComplete []string `yaml:"order_complete"`
	Prime         []string `yaml:"prime"`
	HomePage      []string `yaml:"home_page"`
	Doggos        []string `yaml:"doggos"`
	TwoFactor     []string `yaml:"two_factor"`
}

// signInGreetings are account-widget texts that mean "not logged in".
var signInGreetings = []string{
	"Hello, Sign in",
	"Hola, Identifícate",
	"Bonjour, Identifiez-vous",
	"Ciao, Accedi",
	"Hallo, Anmelden",
	"Hallo, Inloggen",
}

func defaultTitleSets() TitleSets {
	return TitleSets{
		SignIn: []string{
			"Amazon Sign In",
			"Amazon Sign-In",
			"Amazon Anmelden",
			"Iniciar sesión en Amazon",
			"Connexion Amazon",
			"Amazon Accedi",
			"Inloggen bij Amazon",
		},
		Captcha: []string{"Robot Check"},
		Cart: []string{
			"Amazon.com Shopping Cart",
			"Amazon.ca Shopping Cart",
			"Amazon.co.uk Shopping Basket",
			"Amazon.de Basket",
			"Amazon.de Einkaufswagen",
			"Cesta de compra Amazon.es",
			"Amazon.fr Panier",
			"Carrello Amazon.it",
			"AmazonSmile Shopping Cart",
			"Amazon.nl-winkelwagen",
		},
		Checkout: []string{
			"Amazon.com Checkout",
			"Amazon.co.uk Checkout",
			"Place Your Order - Amazon.ca Checkout",
			"Place Your Order - Amazon.co.uk Checkout",
			"Amazon.de Checkout",
			"Place Your Order - Amazon.de Checkout",
			"Amazon.de - Bezahlvorgang",
			"Bestellung aufgeben - Amazon.de-Bezahlvorgang",
			"Place Your Order - Amazon.com Checkout",
			"Place Your Order - Amazon.com",
			"Tramitar pedido en Amazon.es",
			"Processus de paiement Amazon.com",
			"Confirmar pedido - Compra Amazon.es",
			"Passez votre commande - Processus de paiement Amazon.fr",
			"Ordina - Cassa Amazon.it",
			"AmazonSmile Checkout",
			"Plaats je bestelling - Amazon.nl-kassa",
			"Place Your Order - AmazonSmile Checkout",
		},
		OrderComplete: []string{
			"Amazon.com Thanks You",
			"Amazon.ca Thanks You",
			"AmazonSmile Thanks You",
			"Thank you",
			"Amazon.fr Merci",
			"Merci",
			"Amazon.es te da las gracias",
			"Amazon.fr vous remercie.",
			"Grazie da Amazon.it",
			"Hartelijk dank",
		},
		Prime: []string{"Complete your Amazon Prime sign up"},
		HomePage: []string{
			"Amazon.com: Online Shopping for Electronics, Apparel, Computers, Books, DVDs & more",
			"AmazonSmile: You shop. Amazon gives.",
			"Amazon.ca: Low Prices – Fast Shipping – Millions of Items",
			"Amazon.co.uk: Low Prices in Electronics, Books, Sports Equipment & more",
			"Amazon.de: Low Prices in Electronics, Books, Sports Equipment & more",
			"Amazon.de: Günstige Preise für Elektronik & Foto, Filme, Musik, Bücher, Games, Spielzeug & mehr",
			"Amazon.es: compra online de electrónica, libros, deporte, hogar, moda y mucho más.",
			"Amazon.fr : livres, DVD, jeux vidéo, musique, high-tech, informatique, jouets, vêtements, chaussures, sport, bricolage, maison, beauté, puériculture, épicerie et plus encore !",
			"Amazon.it: elettronica, libri, musica, fashion, videogiochi, DVD e tanto altro",
			"Amazon.nl: Groot aanbod, kleine prijzen in o.a. Elektronica, boeken, sport en meer",
		},
		Doggos:    []string{"Sorry! Something went wrong!"},
		TwoFactor: []string{"Two-Step Verification"},
	}
}

// titles is the live set the classifier matches against. Mutated once at
// startup if an overrides file is given, read-only afterwards.
var titles = defaultTitleSets()

// LoadTitleOverrides merges extra title variants from a YAML file into the
// built-in sets. Missing file is an error; unknown keys are ignored.
func LoadTitleOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var extra TitleSets
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return err
	}

	titles.SignIn = append(titles.SignIn, extra.SignIn...)
	titles.Captcha = append(titles.Captcha, extra.Captcha...)
	titles.Cart = append(titles.Cart, extra.Cart...)
	titles.Checkout = append(titles.Checkout, extra.Checkout...)
	titles.OrderComplete = append(titles.OrderComplete, extra.OrderComplete...)
	titles.Prime = append(titles.Prime, extra.Prime...)
	titles.HomePage = append(titles.HomePage, extra.HomePage...)
	titles.Doggos = append(titles.Doggos, extra.Doggos...)
	titles.TwoFactor = append(titles.TwoFactor, extra.TwoFactor...)
	return nil
}

// classifyTitle maps a page title to its PageState. The sets are mutually
// exclusive; first match wins in the order below.
func classifyTitle(title string) PageState {
	switch {
	case titleIn(title, titles.SignIn):
		return PageSignIn
	case titleIn(title, titles.Captcha):
		return PageCaptcha
	case titleIn(title, titles.Cart):
		return PageCart
	case titleIn(title, titles.Checkout):
		return PageCheckout
	case titleIn(title, titles.OrderComplete):
		return PageOrderComplete
	case titleIn(title, titles.Prime):
		return PagePrime
	case titleIn(title, titles.HomePage):
		return PageHomePage
	case titleIn(title, titles.Doggos):
		return PageDoggos
	case titleIn(title, titles.TwoFactor):
		return PageTwoFactor
	default:
		return PageUnknown
	}
}

func titleIn(title string, set []string) bool {
	for _, t := range set {
		if title == t {
			return true
		}
	}
	return false
}
