// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package compat

import "github.com/davishong/rallyfeed/internal/apperr"

// PositionPicks recommends champions for one position.
type PositionPicks struct {
	Position  string   `json:"position"`
	Champions []string `json:"champions"`
}

// Entry is the immutable catalog record for one personality type.
type Entry struct {
	Alias       string
	Description string
	GoodMatches []Type
	BadMatches  []Type
	Picks       []PositionPicks
}

// catalog is built once at package init and never mutated afterward.
var catalog = buildCatalog()

// GetEntry returns the catalog record for a type, or a not-supported error.
// Callers must never substitute a default entry on failure.
func GetEntry(t Type) (Entry, error) {
	entry, ok := catalog[t]
	if !ok {
		return Entry{}, apperr.NewNotSupported("no catalog entry for type: " + string(t))
	}
	return entry, nil
}

// GoodMatches returns the set of types that pair well with t.
func GoodMatches(t Type) (map[Type]struct{}, error) {
	entry, err := GetEntry(t)
	if err != nil {
		return nil, err
	}
	return toSet(entry.GoodMatches), nil
}

// BadMatches returns the set of types that pair poorly with t.
func BadMatches(t Type) (map[Type]struct{}, error) {
	entry, err := GetEntry(t)
	if err != nil {
		return nil, err
	}
	return toSet(entry.BadMatches), nil
}

func toSet(types []Type) map[Type]struct{} {
	set := make(map[Type]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func buildCatalog() map[Type]Entry {
	c := make(map[Type]Entry, 16)

	c[ADCI] = entry(
		"Solo Carry",
		"Leads aggressive fights and opens teamfights alone to carry the game.",
		[]Type{ADTB, ASTI},
		[]Type{FDCB, FDTB},
		picks("TOP", "Renekton", "Aatrox"),
		picks("JUNGLE", "Lee Sin", "Vi"),
		picks("MID", "Talon", "Zed"),
		picks("ADC", "Draven", "Kalista"),
		picks("SUP", "Leona", "Alistar"),
	)

	c[ADCB] = entry(
		"Assault Marksman",
		"Scales aggressively and finishes fights with backline firepower.",
		[]Type{ASCI, ASTB},
		[]Type{FSTB, FDTI},
		picks("TOP", "Jayce", "Quinn"),
		picks("JUNGLE", "Viego", "Graves"),
		picks("MID", "Syndra", "Akali"),
		picks("ADC", "Lucian", "Samira"),
		picks("SUP", "Brand", "Xerath"),
	)

	c[ADTI] = entry(
		"Skirmish Architect",
		"Prioritizes growth but opens fights first when the moment is right.",
		[]Type{ASTI, FSTI},
		[]Type{FDCI, FSCB},
		picks("TOP", "Pantheon", "Darius"),
		picks("JUNGLE", "Nocturne", "Kha'Zix"),
		picks("MID", "Ahri", "Aurora"),
		picks("ADC", "Kog'Maw", "Nilah"),
		picks("SUP", "Pyke", "Neeko"),
	)

	c[ADTB] = entry(
		"Explosive Collaborator",
		"Creates explosive teamfights together with the team at an aggressive tempo.",
		[]Type{ADCI, ASTB},
		[]Type{FDCB, FSTB},
		picks("TOP", "Gangplank", "Tryndamere"),
		picks("JUNGLE", "Master Yi", "Bel'Veth"),
		picks("MID", "Katarina", "Ziggs"),
		picks("ADC", "Kai'Sa", "Tristana"),
		picks("SUP", "Seraphine", "Zyra"),
	)

	c[ASCI] = entry(
		"Hidden Hero",
		"Yields resources yet still makes their presence felt in every fight.",
		[]Type{ADCB, FSCI},
		[]Type{FSCB, FDTB},
		picks("TOP", "Sett", "Poppy"),
		picks("JUNGLE", "Jarvan IV", "Briar"),
		picks("MID", "Galio", "Malzahar"),
		picks("SUP", "Thresh", "Rakan"),
	)

	c[ASCB] = entry(
		"Strategic Planner",
		"Values team synergy and timing, designing the shape of each battle.",
		[]Type{FDCB, ASTB},
		[]Type{ADCI, FDTI},
		picks("TOP", "Cho'Gath", "K'Sante"),
		picks("JUNGLE", "Ivern", "Lillia"),
		picks("MID", "Orianna", "Ryze"),
		picks("SUP", "Brand", "Hwei"),
	)

	c[ASTI] = entry(
		"Devoted Shield",
		"Goes in first for the team and takes responsibility for starting fights.",
		[]Type{ADTI, FSTI},
		[]Type{ADCB, FDCI},
		picks("TOP", "Malphite", "Maokai"),
		picks("JUNGLE", "Lee Sin", "Vi"),
		picks("MID", "Twisted Fate", "Malphite"),
		picks("SUP", "Alistar", "Nautilus"),
	)

	c[ASTB] = entry(
		"Battlefield Conductor",
		"Coordinates team firepower and fight tempo from the backline.",
		[]Type{ADTB, ASCB},
		[]Type{FDCI, FSCI},
		picks("TOP", "Riven", "Gnar"),
		picks("JUNGLE", "Fiddlesticks", "Udyr"),
		picks("MID", "Hwei", "Zoe"),
		picks("SUP", "Karma", "Swain"),
	)

	c[FDCI] = entry(
		"Lone Scaler",
		"Farms through the early game, then looks for openings on their own.",
		[]Type{FDTI, ASCI},
		[]Type{ASTB, FSTB},
		picks("TOP", "Irelia", "Quinn"),
		picks("JUNGLE", "Nocturne", "Shyvana"),
		picks("MID", "Yasuo", "Yone"),
		picks("ADC", "Ezreal", "Kog'Maw"),
		picks("SUP", "Lux", "Fiddlesticks"),
	)

	c[FDCB] = entry(
		"Quiet Backline Carry",
		"Grows safely, then carries steadily from the back of every fight.",
		[]Type{ASCB, FSTB},
		[]Type{ADCI, ADTB},
		picks("TOP", "Kayle"),
		picks("JUNGLE", "Master Yi", "Bel'Veth"),
		picks("MID", "Aurelion Sol", "Anivia"),
		picks("ADC", "Caitlyn", "Kai'Sa", "Yunara"),
		picks("SUP", "Zyra", "Shaco"),
	)

	c[FDTI] = entry(
		"Lone Initiator",
		"Scales up and opens the decisive engage at the critical moment.",
		[]Type{FDCI, ADTI},
		[]Type{ASCB, FSTB},
		picks("TOP", "Mordekaiser", "Singed"),
		picks("JUNGLE", "Skarner", "Rammus"),
		picks("MID", "Vex", "Lux"),
		picks("ADC", "Zeri", "Twitch"),
		picks("SUP", "Rell", "Renata Glasc"),
	)

	c[FDTB] = entry(
		"Late Game Ruler",
		"Trusts late-game power and closes out the game together with the team.",
		[]Type{FSTB, ASTB},
		[]Type{ADCI, ASCI},
		picks("TOP", "Kayle", "Nasus"),
		picks("JUNGLE", "Kindred", "Karthus"),
		picks("MID", "Vladimir", "Ryze"),
		picks("ADC", "Jinx", "Sivir", "Smolder"),
		picks("SUP", "Senna", "Sona"),
	)

	c[FSCI] = entry(
		"Timing Master",
		"Balances farming with team contribution and dictates the tempo.",
		[]Type{ASCI, FSTI},
		[]Type{ASTB, FSCB},
		picks("TOP", "Ambessa", "Jax"),
		picks("JUNGLE", "Amumu", "Ivern"),
		picks("MID", "Orianna"),
		picks("SUP", "Blitzcrank", "Thresh"),
	)

	c[FSCB] = entry(
		"Hidden Damage Dealer",
		"Leans on team support to deal consistent damage from the backline.",
		[]Type{FDCB, ASCB},
		[]Type{ASCI, ADTI},
		picks("TOP", "Dr. Mundo", "K'Sante"),
		picks("JUNGLE", "Brand", "Kindred"),
		picks("MID", "Akshan", "Syndra"),
		picks("SUP", "Zyra", "Vel'Koz"),
	)

	c[FSTI] = entry(
		"Wise Commander",
		"Combines macro judgment with engage duty like a field commander.",
		[]Type{ADTI, FSCI},
		[]Type{FDCI, ADCB},
		picks("TOP", "Kennen", "Darius"),
		picks("JUNGLE", "Sejuani", "Lillia"),
		picks("MID", "Sylas", "Malzahar"),
		picks("SUP", "Rell", "Morgana"),
	)

	c[FSTB] = entry(
		"Devoted Supporter",
		"Puts team survival and growth support above everything else.",
		[]Type{FDCB, FSCB},
		[]Type{ADCI, ASCI},
		picks("TOP", "Shen", "Dr. Mundo"),
		picks("JUNGLE", "Ivern", "Volibear"),
		picks("SUP", "Yuumi", "Braum", "Zilean"),
	)

	return c
}

func entry(alias, description string, good, bad []Type, laneRecs ...PositionPicks) Entry {
	return Entry{
		Alias:       alias,
		Description: description,
		GoodMatches: good,
		BadMatches:  bad,
		Picks:       laneRecs,
	}
}

func picks(position string, champions ...string) PositionPicks {
	return PositionPicks{Position: position, Champions: champions}
}
