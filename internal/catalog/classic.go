// internal/catalog/classic.go
package catalog

import "github.com/brokeio/brokeio/internal/models"

// prop builds a property tile with a full rent schedule (base, 1-4 houses, hotel).
func prop(title, group string, price, mortgage, houseCost int64, rents [6]int64) models.TileContent {
	return models.TileContent{
		Title: title,
		Type:  models.TileProperty,
		Property: &models.PropertyInfo{
			Price:         price,
			MortgageValue: mortgage,
			Rents:         rents,
			HouseCost:     houseCost,
			HotelCost:     houseCost,
			ColorGroup:    group,
		},
	}
}

func special(title string, t models.TileType) models.TileContent {
	return models.TileContent{Title: title, Type: t}
}

func tax(title string, amount int64) models.TileContent {
	return models.TileContent{Title: title, Type: models.TileTax, TaxAmount: amount}
}

// ClassicBoard returns the default 40-position world-cities board that seed
// data ships with. Jail sits at 10, vacation at 20, go-to-jail at 30.
func ClassicBoard() *models.Board {
	positions := []models.TileContent{
		special("Start", models.TileStart),
		prop("Salvador", "brazil", 60, 30, 50, [6]int64{2, 10, 30, 90, 160, 250}),
		special("Treasure", models.TileTreasure),
		prop("Rio de Janeiro", "brazil", 60, 30, 50, [6]int64{4, 20, 60, 180, 320, 450}),
		tax("Income Tax", 200),
		special("Treasure", models.TileTreasure),
		prop("Tel Aviv", "israel", 100, 50, 50, [6]int64{6, 30, 90, 270, 400, 550}),
		special("Chance", models.TileChance),
		prop("Haifa", "israel", 100, 50, 50, [6]int64{6, 30, 90, 270, 400, 550}),
		prop("Jerusalem", "israel", 120, 60, 50, [6]int64{8, 40, 100, 300, 450, 600}),
		special("Jail", models.TileJail),
		prop("Venice", "italy", 140, 70, 100, [6]int64{10, 50, 150, 450, 625, 750}),
		special("Treasure", models.TileTreasure),
		prop("Milan", "italy", 140, 70, 100, [6]int64{10, 50, 150, 450, 625, 750}),
		prop("Rome", "italy", 160, 80, 100, [6]int64{12, 60, 180, 500, 700, 900}),
		special("Chance", models.TileChance),
		prop("Frankfurt", "germany", 180, 90, 100, [6]int64{14, 70, 200, 550, 750, 950}),
		special("Treasure", models.TileTreasure),
		prop("Munich", "germany", 180, 90, 100, [6]int64{14, 70, 200, 550, 750, 950}),
		prop("Berlin", "germany", 200, 100, 100, [6]int64{16, 80, 220, 600, 800, 1000}),
		special("Vacation", models.TileVacation),
		prop("Shenzhen", "china", 220, 110, 150, [6]int64{18, 90, 250, 700, 875, 1050}),
		special("Chance", models.TileChance),
		prop("Beijing", "china", 220, 110, 150, [6]int64{18, 90, 250, 700, 875, 1050}),
		prop("Shanghai", "china", 240, 120, 150, [6]int64{20, 100, 300, 750, 925, 1100}),
		special("Treasure", models.TileTreasure),
		prop("Lyon", "france", 260, 130, 150, [6]int64{22, 110, 330, 800, 975, 1150}),
		prop("Toulouse", "france", 260, 130, 150, [6]int64{22, 110, 330, 800, 975, 1150}),
		special("Chance", models.TileChance),
		prop("Paris", "france", 280, 140, 150, [6]int64{24, 120, 360, 850, 1025, 1200}),
		special("Go To Jail", models.TileGoToJail),
		prop("Liverpool", "uk", 300, 150, 200, [6]int64{26, 130, 390, 900, 1100, 1275}),
		prop("Manchester", "uk", 300, 150, 200, [6]int64{26, 130, 390, 900, 1100, 1275}),
		special("Treasure", models.TileTreasure),
		prop("London", "uk", 320, 160, 200, [6]int64{28, 150, 450, 1000, 1200, 1400}),
		special("Chance", models.TileChance),
		special("Treasure", models.TileTreasure),
		prop("San Francisco", "usa", 350, 175, 200, [6]int64{35, 175, 500, 1100, 1300, 1500}),
		tax("Luxury Tax", 100),
		prop("New York", "usa", 400, 200, 200, [6]int64{50, 200, 600, 1400, 1700, 2000}),
	}

	return &models.Board{
		Name:      "Classic",
		Size:      11,
		Theme:     "world-cities",
		Positions: positions,
		Special: models.SpecialPositions{
			Start:      0,
			Prison:     10,
			Vacation:   20,
			GoToPrison: 30,
		},
	}
}

// StandardCards is a minimal default chance/treasure deck. Real card content
// is supplied by an external collaborator; this deck keeps standalone servers
// playable.
func StandardCards() []models.CardEffect {
	jail := 10
	start := 0
	return []models.CardEffect{
		{Title: "Bank pays you a dividend", Cash: 50},
		{Title: "Pay school fees", Cash: -50},
		{Title: "You won a crossword competition", Cash: 100},
		{Title: "Doctor's fee", Cash: -50},
		{Title: "Advance to Start", MoveTo: &start},
		{Title: "Visit the jailhouse", MoveTo: &jail},
		{Title: "Income tax refund", Cash: 20},
		{Title: "Pay hospital fees", Cash: -100},
	}
}
