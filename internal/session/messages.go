package session

// User-facing Czech texts.
const (
	titleWelcome  = "🚀 Vítejte"
	msgWelcome    = "Vítejte v BMC Navigátoru! Jsem váš AI byznys stratég připravený pomoci vám analyzovat a inovovat váš byznys model."
	PromptContext = "Než začneme, popište prosím volným textem vaši firmu, její současný byznys model a případný scénář, který chcete řešit (např. expanze, změna modelu). Čím více kontextu mi dáte, tím relevantnější bude naše další práce."

	titleMissingContext = "❌ Chybí kontext"
	msgMissingContext   = "Bez úvodního popisu nemůžeme pokračovat. Popište prosím svou firmu alespoň jednou větou."

	titleContextAccepted = "✅ Kontext přijat"
	msgContextAccepted   = "Děkuji za kontext. Nyní připravím plán dotazování na míru vaší situaci."
	titlePreparingPlan   = "🧠 Příprava plánu"
	msgPreparingPlan     = "Na základě vašeho popisu připravuji personalizovaný plán dotazování..."

	titlePlanReady  = "✅ Plán připraven"
	msgPlanReadyFmt = "Plán dotazování byl úspěšně vygenerován. Zeptám se vás na %d klíčových oblastí."
	titleLetsGo     = "🚀 Jdeme na to"
	msgLetsGo       = "Nyní společně projdeme jednotlivé bloky vašeho byznys modelu do hloubky."
	progressFmt     = "Oblast %d z %d: %s"

	titleSkipConfirmed = "✅ Potvrzeno"
	msgSkipFmt         = "Rozumím. Přeskočíme oblast '%s'."

	titleMappingDone = "🎉 Hotovo"
	msgMappingDone   = "Skvělá práce! Zmapovali jsme celý váš byznys model."
	statusAnalysis   = "Zahajuji expertní strategickou analýzu..."

	TitleAnalysisOutput = "Fáze 3: Strategická analýza"
	titleInnovation     = "💡 Fáze inovací"
	msgInnovation       = "Na základě analýzy nyní vygeneruji několik směrů pro inovaci vašeho byznys modelu. Nejprve uvidíte jejich přehled a poté každou rozpracuji do detailu."
	statusIdeaList      = "Generuji přehled inovativních nápadů..."

	TitleIdeaListOutput = "Přehled návrhů inovací"
	titleDetails        = "Detailní rozpracování"
	msgDetailsFmt       = "Nyní detailně rozpracuji těchto %d nápadů."
	statusDetailFmt     = "Rozpracovávám detailně nápad: '%s'..."
	titleDetailFmt      = "Detail návrhu: %s"

	titleFinished = "🎉 Sezení dokončeno"
	msgFinished   = "Tímto končí naše interaktivní sezení. Doufám, že detailní analýza a návrhy byly přínosné pro vaše strategické plánování."

	titleModelError  = "❌ Nastala chyba"
	titlePlanError   = "❌ Chyba plánu"
	msgPlanError     = "Nepodařilo se mi vytvořit plán."
	titlePlanParse   = "❌ Chyba zpracování"
	msgPlanParseFmt  = "Nastala chyba při zpracování vygenerovaného plánu: %v."
	titleTitlesError = "Chyba zpracování"
	msgTitlesError   = "Nepodařilo se mi extrahovat názvy inovací ze seznamu. Pokračování není možné."
	titleRestart     = "❌ Sezení ukončeno"
	msgRestart       = "Zkuste prosím spustit sezení znovu."
)
