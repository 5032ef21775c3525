// This file was originally taken from Docker project:
// https://github.com/moby/moby/blob/e50f791d42/pkg/namesgenerator/names-generator.go
//
// Apache License 2.0: https://github.com/moby/moby/blob/e50f791d42/LICENSE

package threadpool

import (
	"fmt"
	"math/rand"
)

var (
	left = [...]string{
		"admiring",
		"adoring",
		"affectionate",
		"agitated",
		"amazing",
		"awesome",
		"blissful",
		"bold",
		"boring",
		"brave",
		"busy",
		"charming",
		"clever",
		"cool",
		"compassionate",
		"competent",
		"confident",
		"dazzling",
		"determined",
		"dreamy",
		"eager",
		"ecstatic",
		"elastic",
		"elegant",
		"epic",
		"fervent",
		"festive",
		"focused",
		"friendly",
		"gallant",
		"gifted",
		"gracious",
		"happy",
		"hopeful",
		"inspiring",
		"jolly",
		"keen",
		"kind",
		"laughing",
		"loving",
		"lucid",
		"magical",
		"mystifying",
		"modest",
		"nifty",
		"nostalgic",
		"objective",
		"optimistic",
		"peaceful",
		"practical",
		"priceless",
		"quirky",
		"quizzical",
		"relaxed",
		"reverent",
		"serene",
		"sharp",
		"silly",
		"sleepy",
		"stoic",
		"sweet",
		"tender",
		"trusting",
		"upbeat",
		"vibrant",
		"vigilant",
		"vigorous",
		"wizardly",
		"wonderful",
		"youthful",
		"zealous",
		"zen",
	}

	// Beloved scientists and hackers, as in Docker's container names.
	right = [...]string{
		// Maria Gaetana Agnesi, Italian mathematician and philosopher
		"agnesi",
		// Archimedes, Greek mathematician and engineer
		"archimedes",
		// Charles Babbage, invented the concept of a programmable computer
		"babbage",
		// Jean Bartik, one of the original programmers of the ENIAC
		"bartik",
		// Elizabeth Blackwell, first female doctor of medicine in the United States
		"blackwell",
		// Niels Bohr, made foundational contributions to atomic structure and quantum theory
		"bohr",
		// Rachel Carson, marine biologist and author of Silent Spring
		"carson",
		// Marie Curie, pioneered research on radioactivity, twice a Nobel laureate
		"curie",
		// Edsger Wybe Dijkstra, Dutch computer scientist, Turing Award winner
		"dijkstra",
		// Albert Einstein, developed the general theory of relativity
		"einstein",
		// Euclid, Greek mathematician, the father of geometry
		"euclid",
		// Leonhard Euler, Swiss mathematician and physicist
		"euler",
		// Richard Feynman, quantum electrodynamics Nobel laureate
		"feynman",
		// Rosalind Franklin, made contributions to the discovery of the structure of DNA
		"franklin",
		// Galileo Galilei, the father of observational astronomy
		"galileo",
		// Margaret Hamilton, led the software engineering for the Apollo program
		"hamilton",
		// Stephen Hawking, theoretical physicist and cosmologist
		"hawking",
		// Grace Hopper, developed the first compiler
		"hopper",
		// Hypatia, Greek astronomer and mathematician
		"hypatia",
		// Katherine Johnson, NASA mathematician of Hidden Figures fame
		"johnson",
		// Johannes Kepler, discovered the laws of planetary motion
		"kepler",
		// Donald Knuth, author of The Art of Computer Programming
		"knuth",
		// Hedy Lamarr, co-invented frequency-hopping spread spectrum
		"lamarr",
		// Ada Lovelace, wrote the first algorithm intended for a machine
		"lovelace",
		// Barbara McClintock, cytogenetics Nobel laureate
		"mcclintock",
		// Lise Meitner, co-discovered nuclear fission
		"meitner",
		// Dmitri Mendeleev, created the periodic table of elements
		"mendeleev",
		// Maryam Mirzakhani, first woman to win the Fields Medal
		"mirzakhani",
		// Isaac Newton, formulated the laws of motion and universal gravitation
		"newton",
		// Emmy Noether, proved the theorem connecting symmetry and conservation laws
		"noether",
		// Louis Pasteur, developed vaccination and pasteurization
		"pasteur",
		// Srinivasa Ramanujan, self-taught Indian mathematician
		"ramanujan",
		// Dennis Ritchie, created the C programming language and co-created Unix
		"ritchie",
		// Claude Shannon, the father of information theory
		"shannon",
		// Nikola Tesla, pioneered alternating current
		"tesla",
		// Ken Thompson, co-created Unix and co-designed Go
		"thompson",
		// Linus Torvalds, created Linux and Git
		"torvalds",
		// Alan Turing, the father of theoretical computer science
		"turing",
		// Steve Wozniak, co-founded Apple and designed the Apple I and II
		"wozniak",
		// Rosalyn Yalow, developed the radioimmunoassay technique
		"yalow",
	}
)

// getRandomName generates a random name from the list of adjectives and
// surnames in this file, formatted as "adjective_surname", e.g.
// "focused_turing". If retry is non-zero, a random integer between 0 and 10
// is added to the end of the name, e.g. "focused_turing3".
func getRandomName(retry int) string {
begin:
	name := fmt.Sprintf("%s_%s", left[rand.Intn(len(left))], right[rand.Intn(len(right))])
	if name == "boring_wozniak" /* Steve Wozniak is not boring */ {
		goto begin
	}

	if retry > 0 {
		name = fmt.Sprintf("%s%d", name, rand.Intn(10))
	}
	return name
}
