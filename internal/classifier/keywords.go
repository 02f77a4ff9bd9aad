package classifier

// Sports vocabulary: disciplines, competitions, roles, clubs and governing
// bodies. Order matters, tags are reported in this order.
var positiveKeywords = []string{
	"futbol",
	"basketbol",
	"voleybol",
	"hentbol",
	"tenis",
	"atletizm",
	"yüzme",
	"güreş",
	"boks",
	"formula 1",
	"süper lig",
	"şampiyonlar ligi",
	"avrupa ligi",
	"konferans ligi",
	"milli takım",
	"teknik direktör",
	"transfer",
	"maç",
	"gol",
	"derbi",
	"stadyum",
	"şampiyon",
	"turnuva",
	"olimpiyat",
	"galatasaray",
	"fenerbahçe",
	"beşiktaş",
	"trabzonspor",
	"başakşehir",
	"uefa",
	"fifa",
	"tff",
	"nba",
	"euroleague",
}

// Vocabulary of unrelated news domains: politics, economy, health,
// education, technology, entertainment, travel and celebrity news.
var negativeKeywords = []string{
	"siyaset",
	"seçim",
	"meclis",
	"milletvekili",
	"cumhurbaşkanı",
	"ekonomi",
	"borsa",
	"enflasyon",
	"faiz",
	"sağlık",
	"hastane",
	"eğitim",
	"okul",
	"üniversite",
	"sınav",
	"teknoloji",
	"yapay zeka",
	"akıllı telefon",
	"magazin",
	"dizi",
	"sinema",
	"konser",
	"tatil",
	"otel",
	"turizm",
	"ünlü",
	"evlendi",
	"boşandı",
}

// Literals that switch off negative keywords for cross-domain stories.
var suppressors = []string{"spor", "futbol", "basketbol"}

// titleOverride in a title marks the article as sports outright.
const titleOverride = "spor"
